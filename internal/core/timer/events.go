package timer

import "time"

// Mode is the kind of interval being counted down.
type Mode string

const (
	ModeWork  Mode = "work"
	ModeBreak Mode = "break"
)

// Next returns the mode that follows this one.
func (mode Mode) Next() Mode {
	if mode == ModeWork {
		return ModeBreak
	}
	return ModeWork
}

// Announcement returns the notification title and message shown when
// an interval of this mode begins.
func (mode Mode) Announcement() (string, string) {
	if mode == ModeBreak {
		return "Break Time!", "It's time to take a break!"
	}
	return "Work Time!", "Break is over! Back to work."
}

// State represents the engine lifecycle.
type State string

const (
	StateIdle              State = "idle"
	StateActive            State = "active"
	StatePaused            State = "paused"
	StateAwaitingDismissal State = "awaiting_dismissal"
)

// Running reports whether the state counts as running (active or paused).
func (state State) Running() bool {
	return state == StateActive || state == StatePaused
}

// EventType defines the type of engine event.
type EventType string

const (
	EventTick        EventType = "tick"
	EventStateChange EventType = "state_change"
	EventIntervalEnd EventType = "interval_end"
)

// Event represents an engine update for observers.
type Event struct {
	Type      EventType
	State     State
	Mode      Mode
	Remaining int
	Total     int
	Title     string
	At        time.Time
}

// Snapshot is a consistent view of the engine state.
type Snapshot struct {
	Mode      Mode
	State     State
	Remaining int
	Total     int
}

// Progress returns the elapsed fraction of the current interval in [0, 1].
func (snapshot Snapshot) Progress() float64 {
	if snapshot.Total <= 0 || snapshot.State == StateIdle {
		return 0
	}
	progress := float64(snapshot.Total-snapshot.Remaining) / float64(snapshot.Total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
