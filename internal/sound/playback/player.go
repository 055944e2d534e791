// Package playback plays alarm sounds through the beep speaker.
package playback

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"pomodoro/internal/sound"
)

const (
	defaultSampleRate = beep.SampleRate(44100)
	chimeDuration     = 1200 * time.Millisecond
	resampleQuality   = 4
)

// BeepPlayer plays sounds on the shared speaker, initialised on first use.
type BeepPlayer struct {
	mu          sync.Mutex
	sampleRate  beep.SampleRate
	initialized bool
}

// NewBeepPlayer returns a player that mixes at 44.1kHz.
func NewBeepPlayer() *BeepPlayer {
	return &BeepPlayer{sampleRate: defaultSampleRate}
}

// Play blocks until the sound finishes or ctx is done.
func (player *BeepPlayer) Play(ctx context.Context, ref string) error {
	streamer, closeStream, err := player.open(ref)
	if err != nil {
		return err
	}
	defer closeStream()

	if err := player.ensureSpeaker(); err != nil {
		return err
	}

	done := make(chan struct{})
	ctrl := &beep.Ctrl{Streamer: beep.Seq(streamer, beep.Callback(func() {
		close(done)
	}))}
	speaker.Play(ctrl)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Lock()
		ctrl.Streamer = nil
		speaker.Unlock()
		return ctx.Err()
	}
}

func (player *BeepPlayer) open(ref string) (beep.Streamer, func(), error) {
	if strings.TrimSpace(ref) == "" {
		return sound.Chime(player.sampleRate, chimeDuration), func() {}, nil
	}

	stream, format, err := sound.Load(ref)
	if err != nil {
		return nil, nil, err
	}
	closeStream := func() { _ = stream.Close() }
	if format.SampleRate == player.sampleRate {
		return stream, closeStream, nil
	}
	return beep.Resample(resampleQuality, format.SampleRate, player.sampleRate, stream), closeStream, nil
}

func (player *BeepPlayer) ensureSpeaker() error {
	player.mu.Lock()
	defer player.mu.Unlock()
	if player.initialized {
		return nil
	}
	if err := speaker.Init(player.sampleRate, player.sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	player.initialized = true
	return nil
}
