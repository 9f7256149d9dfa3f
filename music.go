package beatroll

import (
	"fmt"
	"math"
	"strconv"
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Scales maps a scale name to its intervals, given as semitone offsets from
// the key root, each in 0-11.
var Scales = map[string][]int{
	"Major":      {0, 2, 4, 5, 7, 9, 11},
	"Minor":      {0, 2, 3, 5, 7, 8, 10},
	"Pentatonic": {0, 2, 4, 7, 9},
	"Blues":      {0, 3, 5, 6, 7, 10},
	"Dorian":     {0, 2, 3, 5, 7, 9, 10},
	"Mixolydian": {0, 2, 4, 5, 7, 9, 10},
}

// ScaleNames lists the known scales in the order they are shown to the user.
var ScaleNames = []string{"Major", "Minor", "Pentatonic", "Blues", "Dorian", "Mixolydian"}

// KeyRoot returns the pitch class (0-11) of a key name; unknown names fall
// back to 0 (C).
func KeyRoot(name string) int {
	for i, n := range noteNames {
		if n == name {
			return i
		}
	}
	return 0
}

// NoteName returns the textual representation of a pitch, e.g. 60 -> "C5".
func NoteName(pitch byte) string {
	return fmt.Sprintf("%s%d", noteNames[int(pitch)%12], int(pitch)/12)
}

// NoteNumber parses a note name like "C5" back into a pitch; malformed names
// yield 60 (middle C).
func NoteNumber(name string) byte {
	if len(name) < 2 {
		return 60
	}
	octave, err := strconv.Atoi(name[len(name)-1:])
	if err != nil {
		octave = 4
	}
	for i, n := range noteNames {
		if n == name[:len(name)-1] {
			return byte(octave*12 + i)
		}
	}
	return 60
}

// SnapToScale snaps a pitch to the nearest pitch class of the scale, anchored
// at the key root, preserving the octave. Ties are broken in favor of the
// interval found first in an ascending scan, i.e. the numerically smaller
// one, so a pitch class exactly between two scale members snaps down. The
// scale must be non-empty.
func SnapToScale(pitch, keyRoot int, scale []int) int {
	pitchClass := ((pitch-keyRoot)%12 + 12) % 12
	closest := scale[0]
	closestDistance := math.MaxInt
	for _, interval := range scale {
		distance := pitchClass - interval
		if distance < 0 {
			distance = -distance
		}
		if distance < closestDistance {
			closestDistance = distance
			closest = interval
		}
	}
	octaveOffset := int(math.Floor(float64(pitch-keyRoot) / 12))
	return keyRoot + octaveOffset*12 + closest
}

// Quantize snaps a time to the nearest multiple of the grid unit, both in
// beats. A zero grid disables quantization and returns the time unchanged.
// Halfway points round away from zero.
func Quantize(t, grid float64) float64 {
	if grid == 0 {
		return t
	}
	return math.Round(t/grid) * grid
}
