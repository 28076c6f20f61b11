package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/theory"
)

func TestPrepareSongbook_Defaults(t *testing.T) {
	p, err := PrepareSongbook(&model.SongbookStartRequest{Strings: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Roots) != 12 || len(p.ScaleTypes) != 2 || p.Format != model.FormatJSON {
		t.Errorf("payload = %+v", p)
	}
	if theory.Tuning(p.Tuning).String() != "B E A D G" {
		t.Errorf("tuning = %v", p.Tuning)
	}
}

func TestPrepareSongbook_Rejects(t *testing.T) {
	tests := []struct {
		name string
		req  model.SongbookStartRequest
		want error
	}{
		{"bad root", model.SongbookStartRequest{Strings: 6, Roots: []string{"C", "Z"}}, theory.ErrInvalidKey},
		{"bad scale", model.SongbookStartRequest{Strings: 6, ScaleTypes: []theory.ScaleType{"major"}}, theory.ErrInvalidScaleType},
		{"bad open string", model.SongbookStartRequest{Strings: 4, Tuning: "E A D Q"}, theory.ErrInvalidNote},
		{"drop on 9 strings", model.SongbookStartRequest{Strings: 9, Tuning: "Drop D"}, theory.ErrUnknownStringCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PrepareSongbook(&tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildSongbook_OrderAndProgress(t *testing.T) {
	p := &model.SongbookJobPayload{
		Strings:    4,
		Tuning:     []string{"E", "A", "D", "G"},
		Roots:      []string{"A", "C", "F#"},
		ScaleTypes: []theory.ScaleType{theory.ScaleNatural, theory.ScaleHarmonic},
	}

	var mu sync.Mutex
	var calls []int
	sheets, err := BuildSongbook(context.Background(), p, 2, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 6 {
			t.Errorf("total = %d", total)
		}
		calls = append(calls, done)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != 6 || len(calls) != 6 {
		t.Fatalf("sheets %d, progress calls %d", len(sheets), len(calls))
	}

	wantRoots := []string{"A", "A", "C", "C", "F#", "F#"}
	for i, s := range sheets {
		if s.Diagram.Scale[0] != wantRoots[i] {
			t.Errorf("sheet %d root = %s, want %s", i, s.Diagram.Scale[0], wantRoots[i])
		}
		want := theory.ScaleNatural
		if i%2 == 1 {
			want = theory.ScaleHarmonic
		}
		if s.ScaleType != want {
			t.Errorf("sheet %d scale = %s", i, s.ScaleType)
		}
	}
}

func TestBuildSongbook_FailsOnBadRoot(t *testing.T) {
	p := &model.SongbookJobPayload{
		Strings:    4,
		Tuning:     []string{"E", "A", "D", "G"},
		Roots:      []string{"C", "nope"},
		ScaleTypes: []theory.ScaleType{theory.ScaleNatural},
	}
	if _, err := BuildSongbook(context.Background(), p, 1, nil); !errors.Is(err, theory.ErrInvalidKey) {
		t.Errorf("err = %v", err)
	}
}

func TestBuildSongbook_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &model.SongbookJobPayload{
		Strings:    6,
		Tuning:     []string{"E", "A", "D", "G", "B", "E"},
		Roots:      theory.SharpNames(),
		ScaleTypes: theory.ScaleTypes,
	}
	if _, err := BuildSongbook(ctx, p, 1, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestNewSongbookTask(t *testing.T) {
	p := &model.SongbookJobPayload{Strings: 4, Tuning: []string{"E", "A", "D", "G"}, Roots: []string{"C"}}
	task, err := NewSongbookTask("job-1", p)
	if err != nil {
		t.Fatal(err)
	}
	if task.Type() != TaskTypeSongbook {
		t.Errorf("type = %q", task.Type())
	}
	var got SongbookTask
	if err := json.Unmarshal(task.Payload(), &got); err != nil {
		t.Fatal(err)
	}
	if got.JobID != "job-1" || got.Payload.Roots[0] != "C" {
		t.Errorf("task payload = %+v", got)
	}
}
