// Package preset reads the CLI presets file: default diagram inputs and
// named tunings.
package preset

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/makeasinger/fretboard/internal/theory"
)

// Defaults seed the CLI flags and the TUI.
type Defaults struct {
	Strings int              `toml:"strings"`
	Root    string           `toml:"root"`
	Scale   theory.ScaleType `toml:"scale"`
}

// File is a parsed presets file. It is never written back.
type File struct {
	Path     string            `toml:"-"`
	Defaults Defaults          `toml:"defaults"`
	Tunings  map[string]string `toml:"tunings"`
}

var ErrInvalidPreset = errors.New("invalid preset")

// Default is used when no presets file is given.
func Default() *File {
	return &File{
		Defaults: Defaults{Strings: 6, Root: "A", Scale: theory.ScaleNatural},
		Tunings:  map[string]string{},
	}
}

// Load decodes path over the built-in defaults, so a file may set only the
// keys it cares about.
func Load(path string) (*File, error) {
	f := Default()
	meta, err := toml.DecodeFile(path, f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: %w: unknown key %q", path, ErrInvalidPreset, undecoded[0].String())
	}
	f.Path = path
	if f.Tunings == nil {
		f.Tunings = map[string]string{}
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (f *File) validate() error {
	d := f.Defaults
	if d.Strings < theory.MinStrings || d.Strings > theory.MaxStrings {
		return fmt.Errorf("%w: defaults.strings must be %d-%d, got %d", ErrInvalidPreset, theory.MinStrings, theory.MaxStrings, d.Strings)
	}
	if !theory.IsValidNote(d.Root) {
		return fmt.Errorf("%w: defaults.root %q", ErrInvalidPreset, d.Root)
	}
	if !d.Scale.Valid() {
		return fmt.Errorf("%w: defaults.scale %q", ErrInvalidPreset, d.Scale)
	}
	for name, text := range f.Tunings {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: tuning %q is empty", ErrInvalidPreset, name)
		}
	}
	return nil
}

// Resolve returns the text of the tuning preset called name (matched
// case-insensitively), or name unchanged when there is none.
func (f *File) Resolve(name string) string {
	key := strings.TrimSpace(name)
	if text, ok := f.Tunings[key]; ok {
		return text
	}
	for preset, text := range f.Tunings {
		if strings.EqualFold(preset, key) {
			return text
		}
	}
	return name
}

// Names lists the tuning presets in sorted order.
func (f *File) Names() []string {
	return slices.Sorted(maps.Keys(f.Tunings))
}
