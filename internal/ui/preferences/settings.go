package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pomodoro/internal/core/model"
)

// ErrInvalidInterval is returned when interval input cannot start a timer.
var ErrInvalidInterval = model.ErrInvalidInterval

// Messages shown to the user when interval input is rejected.
const (
	MessageNotIntegers      = model.MessageNotIntegers
	MessageBreakNotPositive = model.MessageBreakNotPositive
	MessageWorkNotPositive  = model.MessageWorkNotPositive
)

// Settings defines editable user preferences.
type Settings struct {
	WorkMinutes  int
	BreakMinutes int
	BreakSeconds int
	SoundPath    string

	RepeatSound  bool
	DesktopToast bool
	Popup        bool
}

// DefaultSettings returns default settings for the timer.
func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:  25,
		BreakMinutes: 5,
		BreakSeconds: 0,
		RepeatSound:  true,
		DesktopToast: true,
		Popup:        true,
	}
}

// WorkDuration is the configured work interval.
func (settings Settings) WorkDuration() time.Duration {
	return time.Duration(settings.WorkMinutes) * time.Minute
}

// BreakDuration is the configured break interval, minutes plus seconds.
func (settings Settings) BreakDuration() time.Duration {
	return time.Duration(settings.BreakMinutes)*time.Minute + time.Duration(settings.BreakSeconds)*time.Second
}

// TimerConfig converts settings to TimerConfig.
func (settings Settings) TimerConfig() model.TimerConfig {
	return model.TimerConfig{
		Work:     settings.WorkDuration(),
		Break:    settings.BreakDuration(),
		SoundRef: settings.SoundPath,
	}
}

// Validate reports whether both intervals are positive.
func (settings Settings) Validate() error {
	return settings.TimerConfig().Validate()
}

// ParseIntervals parses the interval entry fields into settings, keeping
// the non-interval fields of base. The error message is user-facing.
func ParseIntervals(base Settings, work, breakMinutes, breakSeconds string) (Settings, error) {
	values := make([]int, 0, 3)
	for _, raw := range []string{work, breakMinutes, breakSeconds} {
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return base, fmt.Errorf("%w: %s", ErrInvalidInterval, MessageNotIntegers)
		}
		values = append(values, value)
	}

	settings := base
	settings.WorkMinutes = values[0]
	settings.BreakMinutes = values[1]
	settings.BreakSeconds = values[2]
	if err := settings.Validate(); err != nil {
		return base, err
	}
	return settings, nil
}

// UserMessage extracts the dialog text from a ParseIntervals error.
func UserMessage(err error) string {
	message := err.Error()
	return strings.TrimPrefix(message, ErrInvalidInterval.Error()+": ")
}
