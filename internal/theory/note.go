package theory

import (
	"fmt"
	"strings"
)

// PitchClass is an equal-tempered semitone class, 0 = C.
type PitchClass int

// letterSemitones maps the natural note letters to their pitch class.
var letterSemitones = map[byte]PitchClass{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

// sharpNames is the display spelling used for every fretboard cell.
var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var accidentalReplacer = strings.NewReplacer("♭", "b", "♯", "#")

// NormalizeNote trims the token, rewrites Unicode accidentals to ASCII and
// uppercases it. The result is what ParseNote interprets.
func NormalizeNote(note string) string {
	return strings.ToUpper(accidentalReplacer.Replace(strings.TrimSpace(note)))
}

// ParseNote converts a note name such as "C#", "Bb", "E##" or "D♭" into its
// pitch class.
//
// Uppercasing happens before accidentals are read, so any "b" or "B" after
// the letter counts as a flat: "abb" is A double flat, not "A" followed by
// the note B.
func ParseNote(note string) (PitchClass, error) {
	n := NormalizeNote(note)
	if n == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidNote)
	}

	pc, ok := letterSemitones[n[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNote, note)
	}

	for i := 1; i < len(n); i++ {
		switch n[i] {
		case '#':
			pc++
		case 'B':
			pc--
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidNote, note)
		}
	}

	return pc.mod(), nil
}

// IsValidNote reports whether ParseNote accepts note.
func IsValidNote(note string) bool {
	_, err := ParseNote(note)
	return err == nil
}

// SharpName returns the sharp-preferring spelling of the pitch class.
func SharpName(pc PitchClass) string {
	return sharpNames[pc.mod()]
}

// SharpNames returns the 12 display names in pitch-class order.
func SharpNames() []string {
	out := make([]string, len(sharpNames))
	copy(out, sharpNames[:])
	return out
}

// mod is a floored modulo so negative sums still land in [0, 11].
func (pc PitchClass) mod() PitchClass {
	return ((pc % 12) + 12) % 12
}

// String returns the sharp spelling.
func (pc PitchClass) String() string {
	return SharpName(pc)
}
