// Package notify delivers interval-end alerts: sound, desktop toast and a
// dismissible popup, behind one Notifier capability.
package notify

import (
	"context"
	"sync"
	"time"

	"pomodoro/internal/logging"
	"pomodoro/internal/sound"
)

const defaultRepeatGap = 2 * time.Second

// Alert is one interval-end announcement.
type Alert struct {
	Title    string
	Message  string
	SoundRef string
}

// Notifier delivers an alert. A non-nil channel is closed once the alert is
// dismissed; nil means nothing waits for the user.
type Notifier interface {
	Notify(alert Alert) <-chan struct{}
}

// Presenter shows a dismissible alert. It calls dismiss when the user
// acknowledges it and withdraws the alert once ctx is done.
type Presenter interface {
	Present(ctx context.Context, alert Alert, dismiss func())
}

// Toaster sends a fire-and-forget desktop notification.
type Toaster interface {
	Toast(title, message string) error
}

// Options configures a Dispatcher.
type Options struct {
	Player    sound.Player
	Presenter Presenter
	Toasters  []Toaster
	// RepeatSound replays the sound until the popup is dismissed.
	RepeatSound bool
	RepeatGap   time.Duration
}

// Dispatcher fans an alert out to the configured back-ends.
type Dispatcher struct {
	mu      sync.Mutex
	options Options
	ctx     context.Context
	cancel  context.CancelFunc
	current func()
}

// NewDispatcher creates a Dispatcher. Close releases its sounds and popups.
func NewDispatcher(options Options) *Dispatcher {
	if options.RepeatGap <= 0 {
		options.RepeatGap = defaultRepeatGap
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		options: options,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Notify plays the sound, sends toasts and presents the popup. The returned
// channel closes on dismissal; it is nil when no presenter is configured.
func (dispatcher *Dispatcher) Notify(alert Alert) <-chan struct{} {
	dispatcher.Dismiss()

	ctx, cancel := context.WithCancel(dispatcher.ctx)
	done := make(chan struct{})
	var once sync.Once
	dismiss := func() {
		once.Do(func() {
			cancel()
			close(done)
		})
	}

	dispatcher.mu.Lock()
	dispatcher.current = dismiss
	dispatcher.mu.Unlock()

	presenter := dispatcher.options.Presenter
	go dispatcher.playSound(ctx, alert.SoundRef, presenter != nil && dispatcher.options.RepeatSound)

	for _, toaster := range dispatcher.options.Toasters {
		if err := toaster.Toast(alert.Title, alert.Message); err != nil {
			logging.Warnf("desktop notification failed: %v", err)
		}
	}

	if presenter == nil {
		return nil
	}
	logging.Debugf("presenting alert %q", alert.Title)
	presenter.Present(ctx, alert, dismiss)
	return done
}

// Dismiss acknowledges the outstanding alert, if any, stopping its sound and popup.
func (dispatcher *Dispatcher) Dismiss() {
	dispatcher.mu.Lock()
	dismiss := dispatcher.current
	dispatcher.current = nil
	dispatcher.mu.Unlock()
	if dismiss != nil {
		dismiss()
	}
}

// Close dismisses the outstanding alert and stops all playback.
func (dispatcher *Dispatcher) Close() {
	dispatcher.Dismiss()
	dispatcher.cancel()
}

func (dispatcher *Dispatcher) playSound(ctx context.Context, ref string, repeat bool) {
	player := dispatcher.options.Player
	if player == nil {
		return
	}

	var err error
	if repeat {
		err = sound.Repeat(ctx, player, ref, dispatcher.options.RepeatGap)
	} else {
		err = player.Play(ctx, ref)
		if ctx.Err() != nil {
			err = nil
		}
	}
	if err != nil {
		logging.Warnf("play alarm sound %q: %v", ref, err)
	}
}
