package sound

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

// Chime generates a fading two-tone bell used when no sound file is chosen.
func Chime(sampleRate beep.SampleRate, duration time.Duration) beep.Streamer {
	total := sampleRate.N(duration)
	position := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if position >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if position >= total {
				break
			}
			frequency := 880.0
			if position >= total/2 {
				frequency = 660.0
			}
			elapsed := float64(position) / float64(sampleRate)
			envelope := 1 - float64(position)/float64(total)
			value := 0.35 * envelope * math.Sin(2*math.Pi*frequency*elapsed)
			samples[i][0] = value
			samples[i][1] = value
			position++
			n++
		}
		return n, true
	})
}
