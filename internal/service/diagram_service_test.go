package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/theory"
)

func TestDiagramService_Note(t *testing.T) {
	s := NewDiagramService()
	resp, err := s.Note(&model.NoteRequest{Note: " d♭ "})
	if err != nil {
		t.Fatal(err)
	}
	if resp.PitchClass != 1 || resp.SharpName != "C#" || resp.Normalized != "DB" {
		t.Errorf("resp = %+v", resp)
	}

	if _, err := s.Note(&model.NoteRequest{Note: "H"}); !errors.Is(err, theory.ErrInvalidNote) {
		t.Errorf("err = %v, want ErrInvalidNote", err)
	}
}

func TestDiagramService_TuningDefaultsToStandard(t *testing.T) {
	s := NewDiagramService()
	resp, err := s.Tuning(&model.TuningRequest{Strings: 7})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "B E A D G B E" {
		t.Errorf("text = %q", resp.Text)
	}

	resp, err = s.Tuning(&model.TuningRequest{Tuning: "Drop D", Strings: 6})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Notes[0] != "D" || resp.Text != "D A D G B E" {
		t.Errorf("drop tuning = %+v", resp)
	}
}

func TestDiagramService_Tunings(t *testing.T) {
	resp := NewDiagramService().Tunings()
	if len(resp.Tunings) != 5 {
		t.Fatalf("tunings = %d", len(resp.Tunings))
	}
	for _, tu := range resp.Tunings {
		if len(tu.Notes) != tu.Strings {
			t.Errorf("%d strings has %d notes", tu.Strings, len(tu.Notes))
		}
	}
}

func TestDiagramService_Diagram(t *testing.T) {
	s := NewDiagramService()
	resp, err := s.Diagram(&model.DiagramRequest{Strings: 4, Root: "A", ScaleType: theory.ScaleNatural})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Fretboard) != 4 || len(resp.Fretboard[0]) != theory.Frets {
		t.Fatalf("board shape %dx%d", len(resp.Fretboard), len(resp.Fretboard[0]))
	}
	if resp.RootPitchClass != 9 {
		t.Errorf("root pc = %d", resp.RootPitchClass)
	}
	want := []int{9, 11, 0, 2, 4, 5, 7}
	if fmt.Sprint(resp.ScalePitchClasses) != fmt.Sprint(want) {
		t.Errorf("scale pcs = %v, want %v", resp.ScalePitchClasses, want)
	}
	if fmt.Sprint(resp.Tuning) != "[E A D G]" {
		t.Errorf("tuning = %v", resp.Tuning)
	}
}

func TestDiagramService_Errors(t *testing.T) {
	s := NewDiagramService()
	tests := []struct {
		name string
		req  model.DiagramRequest
		want error
	}{
		{"bad root", model.DiagramRequest{Strings: 6, Root: "X", ScaleType: theory.ScaleNatural}, theory.ErrInvalidKey},
		{"bad scale", model.DiagramRequest{Strings: 6, Root: "C", ScaleType: "dorian"}, theory.ErrInvalidScaleType},
		{"bad tuning note", model.DiagramRequest{Strings: 4, Tuning: "E A D X", Root: "C", ScaleType: theory.ScaleNatural}, theory.ErrInvalidNote},
		{"wrong length", model.DiagramRequest{Strings: 6, Tuning: "E A D G", Root: "C", ScaleType: theory.ScaleNatural}, theory.ErrTuningLength},
		{"drop trailing space", model.DiagramRequest{Strings: 6, Tuning: "Drop ", Root: "C", ScaleType: theory.ScaleNatural}, theory.ErrMalformedTuning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Diagram(&tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !IsTheoryError(err) {
				t.Errorf("IsTheoryError(%v) = false", err)
			}
		})
	}
}

func TestIsTheoryError(t *testing.T) {
	if IsTheoryError(errors.New("redis down")) {
		t.Error("unrelated error classified as theory error")
	}
	if IsTheoryError(ErrJobNotFound) {
		t.Error("job error classified as theory error")
	}
}
