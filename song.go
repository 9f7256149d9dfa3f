package beatroll

import (
	"errors"
	"fmt"
)

type (
	// Song is the aggregate of everything needed to play back a composition:
	// the tracks with their notes, the tempo in beats per minute, the time
	// signature, the key and the length of the song in bars. The editing
	// layer owns the Song; the transport only ever receives deep copies of
	// it, so the two never share mutable state.
	Song struct {
		Name          string        `yaml:"name" json:"name"`
		BPM           int           `yaml:"tempo" json:"tempo"`
		TimeSignature TimeSignature `yaml:"time_signature,flow" json:"time_signature"`
		Key           string        `yaml:"key" json:"key"`
		Length        int           `yaml:"length" json:"length"` // in bars
		Tracks        []Track       `yaml:"tracks" json:"tracks"`
	}

	// TimeSignature is a (beats per bar, beat unit) pair, serialized as a
	// two element array e.g. [4, 4].
	TimeSignature [2]int
)

// Default values applied to fields missing from a persisted song.
const (
	DefaultBPM      = 120
	DefaultKey      = "C"
	DefaultLength   = 16
	DefaultVolume   = 80
	DefaultVelocity = 80
)

// DefaultTimeSignature is 4/4.
var DefaultTimeSignature = TimeSignature{4, 4}

// BeatsPerBar returns the numerator of the time signature.
func (ts TimeSignature) BeatsPerBar() int { return ts[0] }

// Unit returns the denominator of the time signature.
func (ts TimeSignature) Unit() int { return ts[1] }

// NewSong returns a song with all the defaults and a single empty track.
func NewSong() Song {
	return Song{
		Name:          "Untitled",
		BPM:           DefaultBPM,
		TimeSignature: DefaultTimeSignature,
		Key:           DefaultKey,
		Length:        DefaultLength,
		Tracks:        []Track{{Name: "Track 1", Volume: DefaultVolume}},
	}
}

// Copy makes a deep copy of a Song.
func (s *Song) Copy() Song {
	tracks := make([]Track, len(s.Tracks))
	for i, t := range s.Tracks {
		tracks[i] = t.Copy()
	}
	ret := *s
	ret.Tracks = tracks
	return ret
}

// AddTrack appends a track to the song.
func (s *Song) AddTrack(t Track) {
	s.Tracks = append(s.Tracks, t)
}

// RemoveTrack removes the track at the given index; out of range indices are
// ignored.
func (s *Song) RemoveTrack(index int) {
	if index < 0 || index >= len(s.Tracks) {
		return
	}
	s.Tracks = append(s.Tracks[:index], s.Tracks[index+1:]...)
}

// LengthInBeats returns the playback upper bound of the song:
// length in bars times beats per bar.
func (s *Song) LengthInBeats() float64 {
	return float64(s.Length * s.TimeSignature.BeatsPerBar())
}

// SecondsPerBeat returns the real duration of one beat. The editing layer
// keeps BPM within 60-200 but the engine tolerates any positive tempo.
func (s *Song) SecondsPerBeat() float64 {
	if s.BPM <= 0 {
		return 0
	}
	return 60.0 / float64(s.BPM)
}

// TrackAudible tells whether the track at the given index should sound:
// muted tracks never sound, and if any track is soloed, only the soloed
// tracks sound.
func (s *Song) TrackAudible(index int) bool {
	if index < 0 || index >= len(s.Tracks) {
		return false
	}
	if s.Tracks[index].Muted {
		return false
	}
	for _, t := range s.Tracks {
		if t.Solo {
			return s.Tracks[index].Solo
		}
	}
	return true
}

// SetDefaults fills in the defaults for all fields a persisted song may have
// left out: tempo, time signature, key, length, track volumes and note
// velocities.
func (s *Song) SetDefaults() {
	if s.Name == "" {
		s.Name = "Untitled"
	}
	if s.BPM == 0 {
		s.BPM = DefaultBPM
	}
	if s.TimeSignature == (TimeSignature{}) {
		s.TimeSignature = DefaultTimeSignature
	}
	if s.Key == "" {
		s.Key = DefaultKey
	}
	if s.Length == 0 {
		s.Length = DefaultLength
	}
	for i := range s.Tracks {
		if s.Tracks[i].Volume == 0 {
			s.Tracks[i].Volume = DefaultVolume
		}
		for j := range s.Tracks[i].Notes {
			if s.Tracks[i].Notes[j].Velocity == 0 {
				s.Tracks[i].Notes[j].Velocity = DefaultVelocity
			}
		}
	}
}

// Validate checks if the Song looks like a valid song: positive tempo, length
// and time signature, one or more tracks, and every note within the pitch,
// velocity and duration limits.
func (s *Song) Validate() error {
	if s.BPM < 1 {
		return errors.New("tempo should be > 0")
	}
	if s.Length < 1 {
		return errors.New("length should be > 0")
	}
	if s.TimeSignature.BeatsPerBar() < 1 {
		return errors.New("time signature should have at least one beat per bar")
	}
	if len(s.Tracks) == 0 {
		return errors.New("song contains no tracks")
	}
	for i, t := range s.Tracks {
		if t.Volume < 0 || t.Volume > 127 {
			return fmt.Errorf("track %v: volume %v out of range 0-127", i, t.Volume)
		}
		for j, n := range t.Notes {
			if n.Pitch > 127 {
				return fmt.Errorf("track %v note %v: pitch %v out of range 0-127", i, j, n.Pitch)
			}
			if n.Velocity < 1 || n.Velocity > 127 {
				return fmt.Errorf("track %v note %v: velocity %v out of range 1-127", i, j, n.Velocity)
			}
			if n.Duration <= 0 {
				return fmt.Errorf("track %v note %v: duration should be > 0", i, j)
			}
			if n.Start < 0 {
				return fmt.Errorf("track %v note %v: start time should be >= 0", i, j)
			}
		}
	}
	return nil
}
