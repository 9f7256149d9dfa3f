package beatroll

type (
	// Note is a single note on the timeline of a track. Pitch is a MIDI note
	// number (69 = A4), Start and Duration are given in beats and Velocity
	// sets how loud the note is played (1-127).
	Note struct {
		Pitch    byte    `yaml:"pitch" json:"pitch"`
		Duration float64 `yaml:"duration" json:"duration"`
		Start    float64 `yaml:"start_time" json:"start_time"`
		Velocity byte    `yaml:"velocity,omitempty" json:"velocity,omitempty"`
	}

	// Track is an ordered collection of notes plus the per-track playback
	// attributes. Notes are kept in insertion order, not sorted by time, and
	// duplicates are allowed; the editor is free to place two identical notes
	// on top of each other.
	Track struct {
		Name       string `yaml:"name" json:"name"`
		Instrument int    `yaml:"instrument" json:"instrument"`
		Channel    int    `yaml:"channel,omitempty" json:"channel,omitempty"`
		Volume     int    `yaml:"volume,omitempty" json:"volume,omitempty"`
		Muted      bool   `yaml:"muted,omitempty" json:"muted,omitempty"`
		Solo       bool   `yaml:"solo,omitempty" json:"solo,omitempty"`
		Notes      []Note `yaml:"notes" json:"notes"`
	}
)

// End returns the time the note stops sounding, in beats.
func (n Note) End() float64 {
	return n.Start + n.Duration
}

// AddNote appends a note to the track, keeping insertion order.
func (t *Track) AddNote(n Note) {
	t.Notes = append(t.Notes, n)
}

// RemoveNote removes the note at the given index; out of range indices are
// ignored.
func (t *Track) RemoveNote(index int) {
	if index < 0 || index >= len(t.Notes) {
		return
	}
	t.Notes = append(t.Notes[:index], t.Notes[index+1:]...)
}

// RemoveNotesNear removes every note whose start time is within half a beat
// and whose pitch is within half a semitone of the given point, returning how
// many notes were removed. These are the eraser tool semantics.
func (t *Track) RemoveNotesNear(start float64, pitch int) int {
	removed := 0
	notes := t.Notes[:0]
	for _, n := range t.Notes {
		if abs(n.Start-start) < 0.5 && abs(float64(n.Pitch)-float64(pitch)) < 0.5 {
			removed++
			continue
		}
		notes = append(notes, n)
	}
	t.Notes = notes
	return removed
}

// NotesInRange returns the notes overlapping the half-open window
// [start, end): a note overlaps iff note.Start < end and note.End() > start.
// A note ending exactly at start does not overlap.
func (t *Track) NotesInRange(start, end float64) []Note {
	var ret []Note
	for _, n := range t.Notes {
		if n.Start < end && n.End() > start {
			ret = append(ret, n)
		}
	}
	return ret
}

// NotesAt returns the notes sounding at the given position, i.e. those with
// note.Start <= pos < note.End(). This is the degenerate point-containment
// case of NotesInRange, used by the transport on every tick.
func (t *Track) NotesAt(pos float64) []Note {
	var ret []Note
	for _, n := range t.Notes {
		if n.Start <= pos && pos < n.End() {
			ret = append(ret, n)
		}
	}
	return ret
}

// Copy makes a deep copy of a Track.
func (t *Track) Copy() Track {
	notes := make([]Note, len(t.Notes))
	copy(notes, t.Notes)
	ret := *t
	ret.Notes = notes
	return ret
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
