// Package session owns the timer engine on behalf of a front-end: it builds a
// fresh engine for every start and routes interval ends to the notifier.
package session

import (
	"sync"
	"time"

	"pomodoro/internal/core/model"
	"pomodoro/internal/core/timer"
	"pomodoro/internal/logging"
	"pomodoro/internal/notify"
)

// Notifier delivers alerts and can withdraw the outstanding one.
type Notifier interface {
	notify.Notifier
	Dismiss()
}

// Options configures a Controller. Callbacks run on the engine goroutine.
type Options struct {
	TickInterval time.Duration
	// OnTick receives the engine state after every displayed second.
	OnTick func(timer.Snapshot)
	// OnEvent receives engine events (state changes, interval ends).
	OnEvent func(timer.Event)
}

// Controller starts, pauses and stops timer runs.
type Controller struct {
	mu       sync.Mutex
	notifier Notifier
	options  Options
	engine   *timer.Engine

	// stopped is the most recently stopped engine, kept for Wait.
	stopped *timer.Engine
}

// New creates a Controller with no active run.
func New(notifier Notifier, options Options) *Controller {
	return &Controller{notifier: notifier, options: options}
}

// Start validates config and begins a work interval. It does nothing while
// a run is in progress.
func (controller *Controller) Start(config model.TimerConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.engine != nil && controller.engine.Snapshot().State != timer.StateIdle {
		return nil
	}
	if controller.engine != nil {
		controller.engine.Close()
		controller.engine = nil
	}

	var engine *timer.Engine
	engine, err := timer.New(config, timer.Callbacks{
		OnTick: func(int) {
			if !controller.owns(engine) {
				return
			}
			if controller.options.OnTick != nil {
				controller.options.OnTick(engine.Snapshot())
			}
		},
		OnIntervalEnd: func(title, message, soundRef string) <-chan struct{} {
			if !controller.owns(engine) || controller.notifier == nil {
				return nil
			}
			wait := controller.notifier.Notify(notify.Alert{Title: title, Message: message, SoundRef: soundRef})
			if !controller.owns(engine) {
				// Stopped while the alert was being raised.
				controller.notifier.Dismiss()
				return nil
			}
			return wait
		},
	}, timer.Config{TickInterval: controller.options.TickInterval})
	if err != nil {
		return err
	}

	if controller.options.OnEvent != nil {
		go forward(engine.Subscribe(8), controller.options.OnEvent)
	}
	controller.engine = engine
	controller.stopped = nil
	logging.Infof("starting timer: work=%s break=%s", config.Work, config.Break)
	engine.Start()
	return nil
}

// Pause toggles pause on the current run.
func (controller *Controller) Pause() {
	controller.mu.Lock()
	engine := controller.engine
	controller.mu.Unlock()
	if engine != nil {
		engine.Pause()
	}
}

// Stop ends the current run and withdraws any outstanding alert.
func (controller *Controller) Stop() {
	controller.mu.Lock()
	engine := controller.engine
	controller.engine = nil
	if engine != nil {
		controller.stopped = engine
	}
	controller.mu.Unlock()

	if engine != nil {
		engine.Close()
		logging.Infof("timer stopped")
	}
	if controller.notifier != nil {
		controller.notifier.Dismiss()
	}
}

// Dismiss acknowledges the outstanding alert so the next interval can begin.
func (controller *Controller) Dismiss() {
	if controller.notifier != nil {
		controller.notifier.Dismiss()
	}
	controller.mu.Lock()
	engine := controller.engine
	controller.mu.Unlock()
	if engine != nil {
		engine.Dismiss()
	}
}

// Snapshot returns the state of the current run, or an idle snapshot.
func (controller *Controller) Snapshot() timer.Snapshot {
	controller.mu.Lock()
	engine := controller.engine
	controller.mu.Unlock()
	if engine == nil {
		return timer.Snapshot{Mode: timer.ModeWork, State: timer.StateIdle}
	}
	return engine.Snapshot()
}

// Wait blocks until the loop goroutine of the current run, or of the run
// most recently stopped, exits or timeout elapses.
func (controller *Controller) Wait(timeout time.Duration) bool {
	controller.mu.Lock()
	engine := controller.engine
	if engine == nil {
		engine = controller.stopped
	}
	controller.mu.Unlock()
	if engine == nil {
		return true
	}
	return engine.Wait(timeout)
}

func (controller *Controller) owns(engine *timer.Engine) bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return engine != nil && controller.engine == engine
}

func forward(events <-chan timer.Event, handler func(timer.Event)) {
	for event := range events {
		handler(event)
	}
}
