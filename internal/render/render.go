// Package render turns generated diagrams into export formats.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/makeasinger/fretboard/internal/theory"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
	FormatText    Format = "txt"
)

// ParseFormat maps a user value to a Format; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatMsgpack, FormatText:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format: %s", s)
}

// ContentType is the MIME type used for uploads and raw responses.
func (f Format) ContentType() string {
	switch f {
	case FormatMsgpack:
		return "application/msgpack"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Extension is the file suffix without the dot.
func (f Format) Extension() string {
	if f == FormatMsgpack {
		return "msgpack"
	}
	return string(f)
}

// Sheet is a diagram together with the inputs that produced it.
type Sheet struct {
	Strings   int
	Tuning    theory.Tuning
	ScaleType theory.ScaleType
	Diagram   *theory.Diagram
}

// Title is e.g. "C Harmonic Minor".
func (s Sheet) Title() string {
	root := theory.SharpName(s.Diagram.Root)
	if len(s.Diagram.Scale) > 0 {
		root = s.Diagram.Scale[0]
	}
	return root + " " + titleCaser.String(string(s.ScaleType)+" minor")
}

// Write encodes a single sheet.
func Write(w io.Writer, format Format, s Sheet) error {
	switch format {
	case FormatJSON, "":
		return json.NewEncoder(w).Encode(s.Diagram.Export())
	case FormatMsgpack:
		return writeMsgpack(w, s)
	case FormatText:
		return writeText(w, s)
	}
	return fmt.Errorf("unknown format: %s", format)
}

// BundleEntry is one sheet inside a songbook export.
type BundleEntry struct {
	Root      string           `json:"root"`
	ScaleType theory.ScaleType `json:"scaleType"`
	Tuning    theory.Tuning    `json:"tuning"`
	theory.Export
}

// WriteBundle encodes several sheets as one document.
func WriteBundle(w io.Writer, format Format, sheets []Sheet) error {
	switch format {
	case FormatJSON, "":
		entries := make([]BundleEntry, 0, len(sheets))
		for _, s := range sheets {
			entries = append(entries, BundleEntry{
				Root:      s.Diagram.Scale[0],
				ScaleType: s.ScaleType,
				Tuning:    s.Tuning,
				Export:    s.Diagram.Export(),
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatMsgpack:
		return writeMsgpackBundle(w, sheets)
	case FormatText:
		for i, s := range sheets {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if err := writeText(w, s); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", format)
}
