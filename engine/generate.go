package engine

import (
	"fmt"
	"strings"

	"github.com/mkantola/beatroll"
)

// chordDuration is how many beats each generated chord lasts.
const chordDuration = 4.0

var chordRoots = map[string]byte{
	"C": 60, "D": 62, "E": 64, "F": 65, "G": 67, "A": 69, "B": 71,
}

// RhythmPatterns maps a rhythm name to the beats within a bar it puts notes
// on.
var RhythmPatterns = map[string][]float64{
	"4/4 Basic": {0, 1, 2, 3},
	"4/4 Rock":  {0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5},
	"3/4 Waltz": {0, 1, 2},
}

// GenerateChords replaces the current track's notes with triads parsed from
// a progression like "C - Am - F - G", one chord per four beats. A chord
// name carrying an "m" after the root becomes a minor triad. Returns the
// number of chords generated.
func (m *Model) GenerateChords(progression string) int {
	if len(m.song.Tracks) == 0 {
		return 0
	}
	var chords []string
	for _, c := range strings.Split(progression, "-") {
		if c = strings.TrimSpace(c); c != "" {
			chords = append(chords, c)
		}
	}
	if len(chords) == 0 {
		return 0
	}
	track := &m.song.Tracks[m.currentTrack]
	track.Notes = track.Notes[:0]
	for i, chord := range chords {
		start := float64(i) * chordDuration
		root, ok := chordRoots[strings.ToUpper(chord[:1])]
		if !ok {
			root = 60
		}
		third := byte(4) // major third
		if strings.Contains(chord[1:], "m") {
			third = 3
		}
		for _, pitch := range []byte{root, root + third, root + 7} {
			track.AddNote(beatroll.Note{Pitch: pitch, Duration: chordDuration, Start: start, Velocity: 70})
		}
	}
	m.sendSong()
	return len(chords)
}

// ApplyRhythm applies a named rhythm pattern to the current track: an empty
// track gets new eighth notes on the pattern beats, otherwise the existing
// note start times are pulled to the closest pattern beat. Returns false for
// unknown pattern names.
func (m *Model) ApplyRhythm(name string) bool {
	pattern, ok := RhythmPatterns[name]
	if !ok || len(m.song.Tracks) == 0 {
		return false
	}
	track := &m.song.Tracks[m.currentTrack]
	if len(track.Notes) == 0 {
		for _, beat := range pattern {
			track.AddNote(beatroll.Note{Pitch: 60, Duration: 0.5, Start: beat, Velocity: beatroll.DefaultVelocity})
		}
	} else {
		for i := range track.Notes {
			closest := pattern[0]
			for _, beat := range pattern[1:] {
				if d, best := track.Notes[i].Start-beat, track.Notes[i].Start-closest; abs(d) < abs(best) {
					closest = beat
				}
			}
			track.Notes[i].Start = closest
		}
	}
	m.sendSong()
	return true
}

func trackName(n int) string {
	return fmt.Sprintf("Track %d", n)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
