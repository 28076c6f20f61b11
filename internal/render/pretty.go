package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/makeasinger/fretboard/internal/theory"
)

// Styles colours the pretty fretboard.
type Styles struct {
	Title  lipgloss.Style
	Root   lipgloss.Style
	Tone   lipgloss.Style
	Other  lipgloss.Style
	Label  lipgloss.Style
	Ruler  lipgloss.Style
	Border lipgloss.Style
}

// DefaultStyles uses the 16-colour ANSI palette.
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		Root:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		Tone:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Other:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Ruler:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// PlainStyles renders without any escape codes.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Title: plain, Root: plain, Tone: plain, Other: plain, Label: plain, Ruler: plain, Border: plain}
}

// Pretty renders the sheet for a terminal.
func Pretty(s Sheet, st Styles) string {
	d := s.Diagram
	var b strings.Builder

	b.WriteString(st.Title.Render(s.Title()))
	b.WriteString("\n")
	tones := make([]string, len(d.Scale))
	for i, n := range d.Scale {
		if i == 0 {
			tones[i] = st.Root.Render(n)
		} else {
			tones[i] = st.Tone.Render(n)
		}
	}
	b.WriteString(strings.Join(tones, " "))
	b.WriteString("\n\n")

	cell := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)
	label := lipgloss.NewStyle().Width(labelWidth)

	b.WriteString(label.Render(""))
	b.WriteString(" ")
	for fret := 1; fret <= theory.Frets; fret++ {
		b.WriteString(st.Ruler.Inherit(cell).Render(strconv.Itoa(fret)))
	}
	b.WriteString("\n")

	for i := len(d.Fretboard) - 1; i >= 0; i-- {
		name := ""
		if i < len(s.Tuning) {
			name = OpenLabel(s.Tuning[i])
		}
		b.WriteString(st.Label.Inherit(label).Render(name))
		b.WriteString(st.Border.Render("|"))
		for _, c := range d.Fretboard[i] {
			style := st.Other
			switch {
			case d.IsRoot(c):
				style = st.Root
			case c.InScale:
				style = st.Tone
			}
			b.WriteString(style.Inherit(cell).Render(CellText(d, c)))
		}
		b.WriteString(st.Border.Render("|"))
		b.WriteString("\n")
	}
	return b.String()
}
