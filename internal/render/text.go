package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/makeasinger/fretboard/internal/theory"
)

var titleCaser = cases.Title(language.English)

const (
	cellWidth  = 5
	labelWidth = 3
)

// CellText is the chart marking for a cell: the root in brackets, other
// scale tones by name and everything else as a dash.
func CellText(d *theory.Diagram, c theory.Cell) string {
	switch {
	case d.IsRoot(c):
		return "[" + c.Note + "]"
	case c.InScale:
		return c.Note
	default:
		return "-"
	}
}

// OpenLabel is the sharp spelling of an open string, or the raw token when
// it does not parse.
func OpenLabel(note string) string {
	pc, err := theory.ParseNote(note)
	if err != nil {
		return note
	}
	return theory.SharpName(pc)
}

func writeText(w io.Writer, s Sheet) error {
	bw := bufio.NewWriter(w)
	d := s.Diagram

	fmt.Fprintln(bw, s.Title())
	fmt.Fprintf(bw, "Scale:  %s\n", strings.Join(d.Scale, " "))
	fmt.Fprintf(bw, "Tuning: %s\n\n", s.Tuning.String())

	bw.WriteString(runewidth.FillRight("", labelWidth+1))
	for fret := 1; fret <= theory.Frets; fret++ {
		bw.WriteString(center(strconv.Itoa(fret), cellWidth))
	}
	bw.WriteString("\n")

	// Highest string on top, as in tablature.
	for i := len(d.Fretboard) - 1; i >= 0; i-- {
		label := ""
		if i < len(s.Tuning) {
			label = OpenLabel(s.Tuning[i])
		}
		bw.WriteString(runewidth.FillRight(label, labelWidth))
		bw.WriteString("|")
		for _, c := range d.Fretboard[i] {
			bw.WriteString(center(CellText(d, c), cellWidth))
		}
		bw.WriteString("|\n")
	}
	return bw.Flush()
}

func center(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return runewidth.FillRight(strings.Repeat(" ", left)+s, width)
}
