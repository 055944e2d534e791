package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval is returned when a configuration cannot start a timer.
var ErrInvalidInterval = errors.New("invalid interval")

// Messages shown to the user when interval input is rejected.
const (
	MessageNotIntegers      = "Please enter valid integers for the intervals."
	MessageBreakNotPositive = "Break interval cannot be zero or negative."
	MessageWorkNotPositive  = "Work interval must be greater than zero."
)

// TimerConfig defines the durations of one work/break cycle.
type TimerConfig struct {
	Work  time.Duration
	Break time.Duration

	// SoundRef is handed to the interval-end notifier untouched.
	SoundRef string
}

// WorkSeconds returns the work interval in whole seconds.
func (config TimerConfig) WorkSeconds() int {
	return int(config.Work / time.Second)
}

// BreakSeconds returns the break interval in whole seconds.
func (config TimerConfig) BreakSeconds() int {
	return int(config.Break / time.Second)
}

// Validate reports whether both intervals are positive. The break is checked
// first.
func (config TimerConfig) Validate() error {
	if config.Break <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, MessageBreakNotPositive)
	}
	if config.Work <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, MessageWorkNotPositive)
	}
	return nil
}
