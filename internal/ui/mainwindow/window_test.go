package mainwindow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pomodoro/internal/core/timer"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{seconds: 1500, want: "25:00"},
		{seconds: 61, want: "01:01"},
		{seconds: 9, want: "00:09"},
		{seconds: 0, want: "00:00"},
		{seconds: -4, want: "00:00"},
		{seconds: 6000, want: "100:00"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, formatClock(tt.seconds))
	}
}

func TestProgressRange(t *testing.T) {
	maximum, value := progressRange(timer.Snapshot{State: timer.StateActive, Mode: timer.ModeWork, Remaining: 1200, Total: 1500})
	require.Equal(t, 1500.0, maximum)
	require.Equal(t, 300.0, value)

	// The reset tick at a mode flip starts the bar over for the new interval.
	maximum, value = progressRange(timer.Snapshot{State: timer.StateAwaitingDismissal, Mode: timer.ModeBreak, Remaining: 300, Total: 300})
	require.Equal(t, 300.0, maximum)
	require.Zero(t, value)

	maximum, value = progressRange(timer.Snapshot{State: timer.StateIdle, Remaining: 1500, Total: 1500})
	require.Equal(t, 1.0, maximum)
	require.Zero(t, value)
}

func TestStatusAndModeText(t *testing.T) {
	idle := timer.Snapshot{State: timer.StateIdle, Mode: timer.ModeWork, Remaining: 1500}
	require.Equal(t, "idle", statusText(idle))
	require.Equal(t, "Ready", modeText(idle))

	breakRun := timer.Snapshot{State: timer.StateActive, Mode: timer.ModeBreak, Remaining: 75, Total: 300}
	require.Equal(t, "Break, 2 min left", statusText(breakRun))
	require.Equal(t, "Break", modeText(breakRun))

	paused := timer.Snapshot{State: timer.StatePaused, Mode: timer.ModeWork, Remaining: 600, Total: 1500}
	require.Equal(t, "Work, 10 min left", statusText(paused))

	// Every tick within the same minute yields the same text.
	require.Equal(t, statusText(timer.Snapshot{State: timer.StateActive, Remaining: 1499}),
		statusText(timer.Snapshot{State: timer.StateActive, Remaining: 1441}))
	require.Equal(t, "Paused", modeText(paused))
}

func TestSoundLabelText(t *testing.T) {
	require.Equal(t, noSoundLabel, soundLabelText(""))
	require.Equal(t, noSoundLabel, soundLabelText("   "))
	require.Equal(t, "bell.ogg", soundLabelText("/home/user/sounds/bell.ogg"))
}
