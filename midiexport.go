package beatroll

import (
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDITicksPerBeat is the tick resolution of exported MIDI files.
const MIDITicksPerBeat = 480

// WriteMIDI writes the song as a standard MIDI file (SMF format 1), one MIDI
// track per song track. Tempo and meter go into the first track; every note
// becomes a NoteOn/NoteOff pair on the track's channel.
func (s *Song) WriteMIDI(w io.Writer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m := smf.New()
	m.TimeFormat = smf.MetricTicks(MIDITicksPerBeat)
	for i, track := range s.Tracks {
		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName(track.Name))
		if i == 0 {
			tr.Add(0, smf.MetaTempo(float64(s.BPM)))
			tr.Add(0, smf.MetaMeter(uint8(s.TimeSignature.BeatsPerBar()), uint8(s.TimeSignature.Unit())))
		}
		channel := uint8(track.Channel)
		tr.Add(0, midi.ProgramChange(channel, uint8(track.Instrument)))
		type tickEvent struct {
			tick uint32
			msg  midi.Message
		}
		events := make([]tickEvent, 0, len(track.Notes)*2)
		for _, n := range track.Notes {
			on := uint32(math.Round(n.Start * MIDITicksPerBeat))
			off := uint32(math.Round(n.End() * MIDITicksPerBeat))
			if off <= on {
				off = on + 1
			}
			events = append(events,
				tickEvent{on, midi.NoteOn(channel, n.Pitch, n.Velocity)},
				tickEvent{off, midi.NoteOff(channel, n.Pitch)},
			)
		}
		sort.SliceStable(events, func(a, b int) bool { return events[a].tick < events[b].tick })
		var prev uint32
		for _, e := range events {
			tr.Add(e.tick-prev, e.msg)
			prev = e.tick
		}
		tr.Close(0)
		m.Add(tr)
	}
	_, err := m.WriteTo(w)
	return err
}
