package audioio

import (
	"math"
	"time"
)

// Tone renders a sine wave of the given frequency and duration, split into
// chunks of cfg.BufferDuration. Amplitude is clamped to [0, 1].
//
// The last 5ms are faded out so the tone does not end with a click.
func Tone(frequency float64, duration time.Duration, amplitude float64, cfg Config) []AudioChunk {
	if frequency <= 0 || duration <= 0 || cfg.SampleRate <= 0 || cfg.Channels <= 0 {
		return nil
	}
	amplitude = math.Max(0, math.Min(1, amplitude))

	total := int(float64(cfg.SampleRate) * duration.Seconds())
	perChunk := cfg.BufferSize()
	if perChunk <= 0 {
		perChunk = total
	}
	fade := int(float64(cfg.SampleRate) * 0.005)

	chunks := make([]AudioChunk, 0, total/perChunk+1)
	for start := 0; start < total; start += perChunk {
		n := perChunk
		if start+n > total {
			n = total - start
		}

		samples := make([]int16, n*cfg.Channels)
		for i := 0; i < n; i++ {
			idx := start + i
			gain := amplitude
			if remaining := total - idx; remaining < fade {
				gain *= float64(remaining) / float64(fade)
			}
			v := int16(gain * 32767 * math.Sin(2*math.Pi*frequency*float64(idx)/float64(cfg.SampleRate)))
			for ch := 0; ch < cfg.Channels; ch++ {
				samples[i*cfg.Channels+ch] = v
			}
		}

		chunks = append(chunks, AudioChunk{
			Samples:    samples,
			SampleRate: cfg.SampleRate,
			Channels:   cfg.Channels,
		})
	}

	return chunks
}
