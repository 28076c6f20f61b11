// Package tui is the interactive fretboard explorer.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/preset"
	"github.com/makeasinger/fretboard/internal/render"
	"github.com/makeasinger/fretboard/internal/service"
	"github.com/makeasinger/fretboard/internal/theory"
)

const (
	fieldRoot = iota
	fieldTuning
	fieldCount
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Model owns all presentation state. Every edit recomputes the diagram from
// scratch through the diagram service.
type Model struct {
	diagrams *service.DiagramService
	presets  *preset.File
	styles   render.Styles

	strings int
	scale   theory.ScaleType
	inputs  [fieldCount]textinput.Model
	focus   int

	sheet *render.Sheet
	err   error
}

// New builds the explorer seeded from the preset defaults.
func New(diagrams *service.DiagramService, presets *preset.File, styles render.Styles) *Model {
	m := &Model{
		diagrams: diagrams,
		presets:  presets,
		styles:   styles,
		strings:  presets.Defaults.Strings,
		scale:    presets.Defaults.Scale,
	}

	root := textinput.New()
	root.Prompt = "Root:   "
	root.Placeholder = "A"
	root.CharLimit = 8
	root.SetValue(presets.Defaults.Root)

	tuning := textinput.New()
	tuning.Prompt = "Tuning: "
	tuning.Placeholder = "standard, Drop D or a preset name"
	tuning.CharLimit = 64

	m.inputs[fieldRoot] = root
	m.inputs[fieldTuning] = tuning
	for i := range m.inputs {
		m.inputs[i].CursorEnd()
	}
	m.inputs[fieldRoot].Focus()

	m.recompute()
	return m
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		return m, m.setFocus((m.focus + 1) % fieldCount)
	case "shift+tab":
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case "up":
		if m.strings < theory.MaxStrings {
			m.strings++
			m.recompute()
		}
		return m, nil
	case "down":
		if m.strings > theory.MinStrings {
			m.strings--
			m.recompute()
		}
		return m, nil
	case "ctrl+t":
		if m.scale == theory.ScaleNatural {
			m.scale = theory.ScaleHarmonic
		} else {
			m.scale = theory.ScaleNatural
		}
		m.recompute()
		return m, nil
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.inputs[m.focus].Value() != before {
		m.recompute()
	}
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

func (m *Model) recompute() {
	req := &model.DiagramRequest{
		Strings:   m.strings,
		Tuning:    m.presets.Resolve(m.inputs[fieldTuning].Value()),
		Root:      m.inputs[fieldRoot].Value(),
		ScaleType: m.scale,
	}
	sheet, err := m.diagrams.Sheet(req)
	if err != nil {
		// the previous diagram is dropped so a stale grid is never shown
		m.sheet = nil
		m.err = err
		return
	}
	m.sheet = &sheet
	m.err = nil
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Minor scale explorer"))
	b.WriteString("\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("Strings: %d   Scale: %s minor", m.strings, m.scale)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.sheet != nil {
		b.WriteString(render.Pretty(*m.sheet, m.styles))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • ↑/↓: strings • ctrl+t: scale type • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

// Sheet is the diagram currently shown, nil while the inputs are invalid.
func (m *Model) Sheet() *render.Sheet { return m.sheet }

// Err is the reason no diagram is shown.
func (m *Model) Err() error { return m.err }
