package render

import (
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/makeasinger/fretboard/internal/theory"
)

// compactSheet stores pitch classes instead of names; readers look names up
// with theory.SharpName.
type compactSheet struct {
	Root      string          `msgpack:"root"`
	ScaleType string          `msgpack:"scaleType"`
	Scale     []string        `msgpack:"scale"`
	Strings   []compactString `msgpack:"strings"`
}

type compactString struct {
	Open  string        `msgpack:"open"`
	Frets []compactCell `msgpack:"frets"`
}

type compactCell struct {
	PC uint8 `msgpack:"pc"`
	In bool  `msgpack:"in"`
}

func toCompact(s Sheet) (compactSheet, error) {
	out := compactSheet{
		ScaleType: string(s.ScaleType),
		Scale:     s.Diagram.Scale,
		Strings:   make([]compactString, 0, len(s.Diagram.Fretboard)),
	}
	if len(s.Diagram.Scale) > 0 {
		out.Root = s.Diagram.Scale[0]
	}
	for i, row := range s.Diagram.Fretboard {
		cs := compactString{Frets: make([]compactCell, 0, len(row))}
		if i < len(s.Tuning) {
			cs.Open = s.Tuning[i]
		}
		for _, cell := range row {
			pc, err := theory.ParseNote(cell.Note)
			if err != nil {
				return compactSheet{}, err
			}
			narrow, err := safecast.Conv[uint8](int(pc))
			if err != nil {
				return compactSheet{}, fmt.Errorf("pitch class %d: %w", pc, err)
			}
			cs.Frets = append(cs.Frets, compactCell{PC: narrow, In: cell.InScale})
		}
		out.Strings = append(out.Strings, cs)
	}
	return out, nil
}

func writeMsgpack(w io.Writer, s Sheet) error {
	c, err := toCompact(s)
	if err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(c)
}

func writeMsgpackBundle(w io.Writer, sheets []Sheet) error {
	out := make([]compactSheet, 0, len(sheets))
	for _, s := range sheets {
		c, err := toCompact(s)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	return msgpack.NewEncoder(w).Encode(out)
}

// DecodeMsgpack reads a sheet written in the msgpack format back into its
// interchange form.
func DecodeMsgpack(r io.Reader) (theory.Export, error) {
	var c compactSheet
	if err := msgpack.NewDecoder(r).Decode(&c); err != nil {
		return theory.Export{}, err
	}
	board := make(theory.Fretboard, 0, len(c.Strings))
	for _, s := range c.Strings {
		row := make([]theory.Cell, 0, len(s.Frets))
		for _, f := range s.Frets {
			row = append(row, theory.Cell{Note: theory.SharpName(theory.PitchClass(f.PC)), InScale: f.In})
		}
		board = append(board, row)
	}
	return theory.Export{Scale: c.Scale, Fretboard: board}, nil
}
