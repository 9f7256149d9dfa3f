package beatroll

import (
	"github.com/viterin/vek/vek32"
)

// RenderSong renders the whole song offline into a single interleaved
// buffer, mixing every audible track. Used by the exporters; live playback
// goes through the transport instead.
func RenderSong(synth Synth, song Song) ([]float32, error) {
	if err := song.Validate(); err != nil {
		return nil, err
	}
	secondsPerBeat := song.SecondsPerBeat()
	lengthBeats := song.LengthInBeats()
	frames := int(lengthBeats * secondsPerBeat * float64(synth.SampleRate))
	buffer := make([]float32, frames*synth.Channels)
	for i := range song.Tracks {
		if !song.TrackAudible(i) {
			continue
		}
		track := &song.Tracks[i]
		volume := float32(track.Volume) / 127
		for _, n := range track.Notes {
			if n.Start >= lengthBeats {
				continue
			}
			tone := synth.Synthesize(n.Pitch, n.Velocity, n.Duration*secondsPerBeat)
			vek32.MulNumber_Inplace(tone, volume)
			offset := int(n.Start*secondsPerBeat*float64(synth.SampleRate)) * synth.Channels
			end := offset + len(tone)
			if end > len(buffer) {
				end = len(buffer)
			}
			if offset >= end {
				continue
			}
			vek32.Add_Inplace(buffer[offset:end], tone[:end-offset])
		}
	}
	for i, v := range buffer {
		if v > 1 {
			buffer[i] = 1
		} else if v < -1 {
			buffer[i] = -1
		}
	}
	return buffer, nil
}
