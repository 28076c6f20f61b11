package theory

import (
	"encoding/json"
	"fmt"
)

// Cell is one fretted position: its sharp-spelled note and whether that
// pitch class belongs to the active scale.
type Cell struct {
	Note    string
	InScale bool
}

// MarshalJSON encodes the cell as a ["note", inScale] pair.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.Note, c.InScale})
}

// UnmarshalJSON accepts the pair form written by MarshalJSON.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("fretboard cell: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Note); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &c.InScale)
}

// Fretboard holds frets 1..12 for each string, lowest string first.
type Fretboard [][]Cell

// Diagram is the result of Generate.
type Diagram struct {
	Scale             []string
	Fretboard         Fretboard
	Root              PitchClass
	ScalePitchClasses []PitchClass
}

// Export is the interchange form of a diagram: exactly scale and fretboard.
type Export struct {
	Scale     []string  `json:"scale"`
	Fretboard Fretboard `json:"fretboard"`
}

// Export returns the serialisable view of the diagram.
func (d *Diagram) Export() Export {
	return Export{Scale: d.Scale, Fretboard: d.Fretboard}
}

// IsRoot reports whether the cell shows the root pitch class.
func (d *Diagram) IsRoot(c Cell) bool {
	pc, err := ParseNote(c.Note)
	return err == nil && pc == d.Root
}

// Contains reports whether pc is one of the scale's pitch classes.
func (d *Diagram) Contains(pc PitchClass) bool {
	for _, p := range d.ScalePitchClasses {
		if p == pc {
			return true
		}
	}
	return false
}

// Generate builds the scale spelling and the 12-fret grid for the tuning.
// It fails on the first invalid input and never returns a partial grid.
func Generate(stringCount int, tuning Tuning, rootNote string, scale ScaleType) (*Diagram, error) {
	root, err := ParseNote(rootNote)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, rootNote)
	}

	names, err := ScaleNotes(scale, root)
	if err != nil {
		return nil, err
	}

	// ScalePitchClasses follows the scale spelling.
	pcs := make([]PitchClass, 0, len(names))
	for _, name := range names {
		pc, err := ParseNote(name)
		if err != nil {
			return nil, fmt.Errorf("%w: table entry %q", ErrScaleNotFound, name)
		}
		pcs = append(pcs, pc)
	}

	if stringCount < MinStrings || stringCount > MaxStrings {
		return nil, fmt.Errorf("%w: %d (want %d-%d)", ErrStringCount, stringCount, MinStrings, MaxStrings)
	}
	if len(tuning) != stringCount {
		return nil, fmt.Errorf("%w: got %d notes for %d strings", ErrTuningLength, len(tuning), stringCount)
	}

	d := &Diagram{
		Scale:             names,
		Fretboard:         make(Fretboard, stringCount),
		Root:              root,
		ScalePitchClasses: pcs,
	}
	for s := 0; s < stringCount; s++ {
		open, err := ParseNote(tuning[s])
		if err != nil {
			return nil, &InvalidTuningNoteError{String: s, Note: tuning[s]}
		}
		row := make([]Cell, Frets)
		for fret := 1; fret <= Frets; fret++ {
			pc := (open + PitchClass(fret)).mod()
			row[fret-1] = Cell{Note: SharpName(pc), InScale: d.Contains(pc)}
		}
		d.Fretboard[s] = row
	}

	return d, nil
}
