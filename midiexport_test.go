package beatroll_test

import (
	"bytes"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/mkantola/beatroll"
)

func TestWriteMIDI(t *testing.T) {
	song := testSong()
	var buf bytes.Buffer
	if err := song.WriteMIDI(&buf); err != nil {
		t.Fatalf("WriteMIDI failed: %v", err)
	}
	m, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reading the file back failed: %v", err)
	}
	if got := len(m.Tracks); got != len(song.Tracks) {
		t.Fatalf("file has %v tracks, expected %v", got, len(song.Tracks))
	}
	for i, track := range song.Tracks {
		var ons, offs int
		var absTime uint32
		onTicks := make(map[uint32]int)
		for _, ev := range m.Tracks[i] {
			absTime += ev.Delta
			var channel, key, velocity uint8
			if ev.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0 {
				ons++
				onTicks[absTime]++
			} else if ev.Message.GetNoteOff(&channel, &key, &velocity) {
				offs++
			}
		}
		if ons != len(track.Notes) || offs != len(track.Notes) {
			t.Errorf("track %v: %v note ons and %v note offs, expected %v of each", i, ons, offs, len(track.Notes))
		}
		for _, n := range track.Notes {
			tick := uint32(n.Start * beatroll.MIDITicksPerBeat)
			if onTicks[tick] == 0 {
				t.Errorf("track %v: no note on at tick %v", i, tick)
			}
			onTicks[tick]--
		}
	}
	if _, ok := m.TimeFormat.(smf.MetricTicks); !ok {
		t.Errorf("time format is %v, expected metric ticks", m.TimeFormat)
	}
}

func TestWriteMIDIInvalidSong(t *testing.T) {
	song := beatroll.Song{BPM: 120, Length: 1, TimeSignature: beatroll.TimeSignature{4, 4}}
	var buf bytes.Buffer
	if err := song.WriteMIDI(&buf); err == nil {
		t.Errorf("WriteMIDI accepted a song with no tracks")
	}
}
