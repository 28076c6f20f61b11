package model

import "github.com/makeasinger/fretboard/internal/theory"

// NoteRequest asks for a single note to be parsed. Blank notes reach the
// parser so they fail with the usual "invalid note" message.
type NoteRequest struct {
	Note string `json:"note" validate:"max=32"`
}

// NoteResponse describes a parsed note
type NoteResponse struct {
	Note       string `json:"note"`
	Normalized string `json:"normalized"`
	PitchClass int    `json:"pitchClass"`
	SharpName  string `json:"sharpName"`
}

// TuningRequest resolves tuning text for an instrument
type TuningRequest struct {
	Tuning  string `json:"tuning" validate:"max=128"`
	Strings int    `json:"strings" validate:"required,min=4,max=8"`
}

// TuningResponse is a resolved tuning, lowest string first
type TuningResponse struct {
	Strings int      `json:"strings"`
	Notes   []string `json:"notes"`
	Text    string   `json:"text"`
}

// TuningsResponse lists the standard tuning for every supported string count
type TuningsResponse struct {
	Tunings []TuningResponse `json:"tunings"`
}

// DiagramRequest represents the request to generate a fretboard diagram.
// An empty tuning means the standard tuning for the string count. The
// scale type is checked by the generator so that unknown values surface as
// theory errors rather than request validation errors.
type DiagramRequest struct {
	Strings   int              `json:"strings" validate:"required,min=4,max=8"`
	Tuning    string           `json:"tuning" validate:"max=128"`
	Root      string           `json:"root" validate:"max=32"`
	ScaleType theory.ScaleType `json:"scaleType" validate:"max=32"`
}

// DiagramResponse is a generated diagram together with its inputs
type DiagramResponse struct {
	Strings           int              `json:"strings"`
	Tuning            []string         `json:"tuning"`
	Root              string           `json:"root"`
	ScaleType         theory.ScaleType `json:"scaleType"`
	Scale             []string         `json:"scale"`
	Fretboard         theory.Fretboard `json:"fretboard"`
	RootPitchClass    int              `json:"rootPitchClass"`
	ScalePitchClasses []int            `json:"scalePitchClasses"`
}

// RawDiagramRequest asks for a diagram rendered in an export format
type RawDiagramRequest struct {
	DiagramRequest
	Format Format `json:"format" validate:"omitempty,oneof=json msgpack txt"`
}
