package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pomodoro/internal/core/session"
	"pomodoro/internal/core/timer"
	"pomodoro/internal/logging"
	"pomodoro/internal/notify"
	"pomodoro/internal/sound"
	"pomodoro/internal/ui/preferences"
)

const shutdownTimeout = 2 * time.Second

// sender is the part of tea.Program the presenter needs.
type sender interface {
	Send(msg tea.Msg)
}

// Presenter shows alerts inside the running program.
type Presenter struct {
	program sender
	serial  atomic.Uint64
}

// Present implements notify.Presenter.
func (presenter *Presenter) Present(ctx context.Context, alert notify.Alert, dismiss func()) {
	serial := presenter.serial.Add(1)
	presenter.program.Send(alertMsg{serial: serial, alert: alert, dismiss: dismiss})
	go func() {
		<-ctx.Done()
		presenter.program.Send(alertClosedMsg{serial: serial})
	}()
}

// Options configures Run.
type Options struct {
	Player       sound.Player
	Toasters     []notify.Toaster
	TickInterval time.Duration
}

// Run shows the terminal timer until the user quits or ctx is done.
func Run(ctx context.Context, settings preferences.Settings, options Options) error {
	model := NewModel(nil, settings)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	dispatcher := notify.NewDispatcher(notify.Options{
		Player:      options.Player,
		Presenter:   &Presenter{program: program},
		Toasters:    options.Toasters,
		RepeatSound: settings.RepeatSound,
	})
	defer dispatcher.Close()

	controller := session.New(dispatcher, session.Options{
		TickInterval: options.TickInterval,
		OnTick: func(snapshot timer.Snapshot) {
			program.Send(snapshotMsg(snapshot))
		},
		OnEvent: func(event timer.Event) {
			program.Send(eventMsg(event))
		},
	})
	defer func() {
		controller.Stop()
		if !controller.Wait(shutdownTimeout) {
			logging.Warnf("timer loop still running after %s", shutdownTimeout)
		}
	}()
	model.controller = controller

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
