package sound

import (
	"context"
	"time"
)

// Repeat plays ref until ctx is cancelled, pausing gap between plays.
// It stops at the first playback error.
func Repeat(ctx context.Context, player Player, ref string, gap time.Duration) error {
	for {
		if err := player.Play(ctx, ref); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !sleepWithContext(ctx, gap) {
			return nil
		}
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	if duration <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
