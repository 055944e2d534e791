package playback

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/require"

	"pomodoro/internal/sound"
)

func streamLength(streamer beep.Streamer) int {
	buffer := make([][2]float64, 1024)
	total := 0
	for {
		n, ok := streamer.Stream(buffer)
		total += n
		if !ok {
			return total
		}
	}
}

func TestOpen_EmptyRefPlaysChime(t *testing.T) {
	player := NewBeepPlayer()

	streamer, closeStream, err := player.open("  ")
	require.NoError(t, err)
	defer closeStream()

	require.Equal(t, defaultSampleRate.N(chimeDuration), streamLength(streamer))
}

func TestOpen_ResamplesToMixerRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bell.wav")
	file, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: 22050, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(file, sound.Chime(format.SampleRate, 500*time.Millisecond), format))
	require.NoError(t, file.Close())

	streamer, closeStream, err := NewBeepPlayer().open(path)
	require.NoError(t, err)
	defer closeStream()

	require.InDelta(t, defaultSampleRate.N(500*time.Millisecond), streamLength(streamer), 8)
}

func TestOpen_RejectsUnsupportedFile(t *testing.T) {
	_, _, err := NewBeepPlayer().open(filepath.Join(t.TempDir(), "notes.txt"))

	require.ErrorIs(t, err, sound.ErrUnsupportedFormat)
}
