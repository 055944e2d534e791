package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetVerbosity(t *testing.T) {
	defer SetLevel(LevelWarn)

	for count, want := range map[int]Level{-1: LevelWarn, 0: LevelWarn, 1: LevelInfo, 2: LevelDebug, 5: LevelDebug} {
		SetVerbosity(count)
		require.Equal(t, want, CurrentLevel(), "count %d", count)
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" Debug ")
	require.NoError(t, err)
	require.Equal(t, LevelDebug, level)
	require.Equal(t, "debug", level.String())

	level, err = ParseLevel("warning")
	require.NoError(t, err)
	require.Equal(t, LevelWarn, level)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}

func TestSetOutput_WritesFilteredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pomodoro.log")
	SetConsole(false)
	defer SetConsole(true)
	require.NoError(t, SetOutput(path))
	defer Close()
	SetLevel(LevelInfo)
	defer SetLevel(LevelWarn)

	Infof("timer started: %ds", 1500)
	Debugf("hidden detail")
	require.NoError(t, Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "[INFO] timer started: 1500s")
	require.NotContains(t, string(content), "hidden detail")
}
