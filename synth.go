package beatroll

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Synth turns notes into sample buffers with a single sine oscillator. The
// zero value is not usable; use NewSynth or fill in the fields.
type Synth struct {
	SampleRate int
	Channels   int
}

// NewSynth returns a synth with the engine's native format, 44100 Hz stereo.
func NewSynth() Synth {
	return Synth{SampleRate: 44100, Channels: 2}
}

// Frequency returns the equal temperament frequency of a pitch, anchored at
// A4 = 69 = 440 Hz exactly.
func Frequency(pitch byte) float64 {
	return 440 * math.Pow(2, (float64(pitch)-69)/12)
}

// Synthesize renders a sine tone of the given duration (in seconds) into a
// new interleaved buffer. The gain is velocity/127 * 0.3, hard-capped to 0.3
// so that even several simultaneous notes stay clear of clipping.
func (s Synth) Synthesize(pitch, velocity byte, duration float64) []float32 {
	frames := int(float64(s.SampleRate) * duration)
	buffer := make([]float32, frames*s.Channels)
	omega := 2 * math.Pi * Frequency(pitch) / float64(s.SampleRate)
	for i := 0; i < frames; i++ {
		v := float32(math.Sin(omega * float64(i)))
		for c := 0; c < s.Channels; c++ {
			buffer[i*s.Channels+c] = v
		}
	}
	gain := float32(velocity) / 127 * 0.3
	if gain > 0.3 {
		gain = 0.3
	}
	vek32.MulNumber_Inplace(buffer, gain)
	return buffer
}
