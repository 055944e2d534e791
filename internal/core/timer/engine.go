package timer

import (
	"errors"
	"sync"
	"time"

	"pomodoro/internal/core/model"
	"pomodoro/internal/logging"
)

// ErrInvalidDuration indicates a work or break interval shorter than one second.
var ErrInvalidDuration = errors.New("interval must be at least one second")

// Callbacks are invoked from the engine goroutine, never with the engine lock held.
type Callbacks struct {
	// OnTick receives the remaining seconds of the current interval.
	OnTick func(remaining int)
	// OnIntervalEnd announces the next interval. A non-nil channel suspends
	// the engine until it is closed (or receives), Dismiss is called, or Stop is called.
	OnIntervalEnd func(title, message, soundRef string) <-chan struct{}
}

// Config contains runtime options for the Engine.
type Config struct {
	TickInterval time.Duration
}

// Engine is the work/break countdown state machine.
type Engine struct {
	mu         sync.Mutex
	config     model.TimerConfig
	options    Config
	callbacks  Callbacks
	mode       Mode
	state      State
	remaining  int
	generation uint64
	cancel     chan struct{}
	loopDone   chan struct{}
	release    chan struct{}
	events     []chan Event
	closed     bool
}

// New creates an idle Engine. Both durations must be at least one second.
func New(config model.TimerConfig, callbacks Callbacks, options Config) (*Engine, error) {
	if config.WorkSeconds() <= 0 || config.BreakSeconds() <= 0 {
		return nil, ErrInvalidDuration
	}
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}

	return &Engine{
		config:    config,
		options:   options,
		callbacks: callbacks,
		mode:      ModeWork,
		state:     StateIdle,
		release:   make(chan struct{}, 1),
	}, nil
}

// Subscribe registers a new observer channel. Slow observers miss events.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		close(ch)
		return ch
	}
	engine.events = append(engine.events, ch)
	return ch
}

// Snapshot returns the current state.
func (engine *Engine) Snapshot() Snapshot {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.snapshotLocked()
}

// Start begins a fresh work interval. It does nothing unless the engine is idle.
func (engine *Engine) Start() {
	engine.mu.Lock()
	if engine.state != StateIdle || engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.mode = ModeWork
	engine.remaining = engine.durationLocked(ModeWork)
	engine.state = StateActive
	engine.launchLocked()
	engine.emitLocked(engine.stateEventLocked())
	remaining := engine.remaining
	engine.mu.Unlock()

	logging.Debugf("timer started: mode=%s remaining=%ds", ModeWork, remaining)
}

// Pause toggles between active and paused. It does nothing in any other state.
func (engine *Engine) Pause() {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	switch engine.state {
	case StateActive:
		engine.state = StatePaused
		engine.cancelLocked()
		logging.Debugf("timer paused: remaining=%ds", engine.remaining)
	case StatePaused:
		engine.state = StateActive
		engine.launchLocked()
		logging.Debugf("timer resumed: remaining=%ds", engine.remaining)
	default:
		return
	}
	engine.emitLocked(engine.stateEventLocked())
}

// Stop returns the engine to idle and releases an outstanding dismissal wait.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.stopLocked()
}

// Dismiss releases the engine when it is waiting for the user to
// acknowledge an interval end. Extra calls are absorbed by the single slot.
func (engine *Engine) Dismiss() {
	select {
	case engine.release <- struct{}{}:
	default:
	}
}

// Close stops the engine and closes all observer channels. A closed engine
// cannot be started again.
func (engine *Engine) Close() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.stopLocked()
	engine.closed = true
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Wait blocks until the current loop goroutine, if any, has exited or the
// timeout elapses. It reports whether the loop exited.
func (engine *Engine) Wait(timeout time.Duration) bool {
	engine.mu.Lock()
	done := engine.loopDone
	engine.mu.Unlock()
	if done == nil {
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

func (engine *Engine) stopLocked() {
	wasIdle := engine.state == StateIdle
	engine.state = StateIdle
	engine.mode = ModeWork
	engine.remaining = 0
	engine.generation++
	engine.cancelLocked()
	engine.Dismiss()
	if !wasIdle {
		engine.emitLocked(engine.stateEventLocked())
		logging.Debugf("timer stopped")
	}
}

// launchLocked starts a loop goroutine that waits for the previous one to exit.
func (engine *Engine) launchLocked() {
	engine.cancelLocked()
	engine.generation++
	cancel := make(chan struct{})
	done := make(chan struct{})
	previous := engine.loopDone
	engine.cancel = cancel
	engine.loopDone = done
	go engine.run(engine.generation, cancel, done, previous)
}

func (engine *Engine) cancelLocked() {
	if engine.cancel != nil {
		close(engine.cancel)
		engine.cancel = nil
	}
}

func (engine *Engine) run(generation uint64, cancel <-chan struct{}, done chan<- struct{}, previous <-chan struct{}) {
	defer close(done)
	if previous != nil {
		<-previous
	}

	for {
		engine.mu.Lock()
		if !engine.ownsLocked(generation, StateActive) {
			engine.mu.Unlock()
			return
		}
		if engine.remaining <= 0 {
			engine.mu.Unlock()
			if !engine.handleIntervalEnd(generation, cancel) {
				return
			}
			continue
		}
		remaining := engine.remaining
		engine.mu.Unlock()

		engine.tick(generation, remaining)
		if !sleepUnlessCancelled(cancel, engine.options.TickInterval) {
			return
		}

		engine.mu.Lock()
		if !engine.ownsLocked(generation, StateActive) {
			engine.mu.Unlock()
			return
		}
		engine.remaining--
		engine.mu.Unlock()
	}
}

// handleIntervalEnd flips the mode, announces it and waits for dismissal.
// It reports whether the same goroutine should continue with the new interval.
func (engine *Engine) handleIntervalEnd(generation uint64, cancel <-chan struct{}) bool {
	engine.mu.Lock()
	if !engine.ownsLocked(generation, StateActive) {
		engine.mu.Unlock()
		return false
	}
	engine.state = StateAwaitingDismissal
	engine.mode = engine.mode.Next()
	engine.remaining = engine.durationLocked(engine.mode)
	select {
	case <-engine.release:
	default:
	}
	mode := engine.mode
	remaining := engine.remaining
	title, message := mode.Announcement()
	event := engine.stateEventLocked()
	event.Type = EventIntervalEnd
	event.Title = title
	engine.emitLocked(event)
	engine.mu.Unlock()

	logging.Debugf("interval ended: next=%s remaining=%ds", mode, remaining)

	if !engine.tick(generation, remaining) {
		return false
	}
	wait := engine.intervalEnd(title, message)
	if wait != nil {
		logging.Debugf("waiting for dismissal")
		select {
		case <-wait:
		case <-engine.release:
		case <-cancel:
		}
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.ownsLocked(generation, StateAwaitingDismissal) {
		return false
	}
	engine.state = StateActive
	engine.emitLocked(engine.stateEventLocked())
	logging.Debugf("resuming: mode=%s remaining=%ds", engine.mode, engine.remaining)
	return true
}

func (engine *Engine) ownsLocked(generation uint64, state State) bool {
	return engine.generation == generation && engine.state == state
}

// tick publishes remaining unless the run has been superseded by Stop or Start.
func (engine *Engine) tick(generation uint64, remaining int) bool {
	engine.mu.Lock()
	if engine.generation != generation {
		engine.mu.Unlock()
		return false
	}
	event := engine.stateEventLocked()
	event.Type = EventTick
	event.Remaining = remaining
	engine.emitLocked(event)
	engine.mu.Unlock()

	if engine.callbacks.OnTick != nil {
		engine.safeTick(remaining)
	}
	return true
}

func (engine *Engine) safeTick(remaining int) {
	defer recoverCallback("OnTick")
	engine.callbacks.OnTick(remaining)
}

func (engine *Engine) intervalEnd(title, message string) (wait <-chan struct{}) {
	if engine.callbacks.OnIntervalEnd == nil {
		return nil
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			logging.Errorf("OnIntervalEnd callback panicked: %v", recovered)
			wait = nil
		}
	}()
	return engine.callbacks.OnIntervalEnd(title, message, engine.config.SoundRef)
}

func recoverCallback(name string) {
	if recovered := recover(); recovered != nil {
		logging.Errorf("%s callback panicked: %v", name, recovered)
	}
}

func (engine *Engine) durationLocked(mode Mode) int {
	if mode == ModeBreak {
		return engine.config.BreakSeconds()
	}
	return engine.config.WorkSeconds()
}

func (engine *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Mode:      engine.mode,
		State:     engine.state,
		Remaining: engine.remaining,
		Total:     engine.durationLocked(engine.mode),
	}
}

func (engine *Engine) stateEventLocked() Event {
	snapshot := engine.snapshotLocked()
	return Event{
		Type:      EventStateChange,
		State:     snapshot.State,
		Mode:      snapshot.Mode,
		Remaining: snapshot.Remaining,
		Total:     snapshot.Total,
		At:        time.Now(),
	}
}

func (engine *Engine) emitLocked(event Event) {
	for _, ch := range engine.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func sleepUnlessCancelled(cancel <-chan struct{}, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-cancel:
		return false
	case <-timer.C:
		return true
	}
}
