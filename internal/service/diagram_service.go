package service

import (
	"errors"
	"strings"

	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/render"
	"github.com/makeasinger/fretboard/internal/theory"
)

var theoryErrors = []error{
	theory.ErrInvalidNote,
	theory.ErrMalformedTuning,
	theory.ErrUnknownStringCount,
	theory.ErrStringCount,
	theory.ErrTuningLength,
	theory.ErrInvalidKey,
	theory.ErrInvalidScaleType,
	theory.ErrScaleNotFound,
}

// IsTheoryError reports whether err comes from rejected musical input rather
// than from a failure of the service itself.
func IsTheoryError(err error) bool {
	for _, target := range theoryErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// DiagramService answers synchronous theory queries. It holds no state.
type DiagramService struct{}

func NewDiagramService() *DiagramService {
	return &DiagramService{}
}

// Note parses a single note name
func (s *DiagramService) Note(req *model.NoteRequest) (*model.NoteResponse, error) {
	pc, err := theory.ParseNote(req.Note)
	if err != nil {
		return nil, err
	}
	return &model.NoteResponse{
		Note:       req.Note,
		Normalized: theory.NormalizeNote(req.Note),
		PitchClass: int(pc),
		SharpName:  theory.SharpName(pc),
	}, nil
}

// Tuning resolves tuning text; empty text means the standard tuning
func (s *DiagramService) Tuning(req *model.TuningRequest) (*model.TuningResponse, error) {
	tuning, err := ResolveTuning(req.Tuning, req.Strings)
	if err != nil {
		return nil, err
	}
	return tuningResponse(req.Strings, tuning), nil
}

// Tunings lists the standard tuning for every supported string count
func (s *DiagramService) Tunings() *model.TuningsResponse {
	resp := &model.TuningsResponse{}
	for _, n := range theory.StringCounts() {
		t, _ := theory.StandardTuning(n)
		resp.Tunings = append(resp.Tunings, *tuningResponse(n, t))
	}
	return resp
}

// Diagram generates the full diagram for a request
func (s *DiagramService) Diagram(req *model.DiagramRequest) (*model.DiagramResponse, error) {
	sheet, err := s.Sheet(req)
	if err != nil {
		return nil, err
	}
	d := sheet.Diagram

	pcs := make([]int, 0, len(d.ScalePitchClasses))
	for _, pc := range d.ScalePitchClasses {
		pcs = append(pcs, int(pc))
	}

	return &model.DiagramResponse{
		Strings:           req.Strings,
		Tuning:            sheet.Tuning,
		Root:              req.Root,
		ScaleType:         req.ScaleType,
		Scale:             d.Scale,
		Fretboard:         d.Fretboard,
		RootPitchClass:    int(d.Root),
		ScalePitchClasses: pcs,
	}, nil
}

// Sheet resolves and generates a diagram ready for rendering
func (s *DiagramService) Sheet(req *model.DiagramRequest) (render.Sheet, error) {
	tuning, err := ResolveTuning(req.Tuning, req.Strings)
	if err != nil {
		return render.Sheet{}, err
	}
	d, err := theory.Generate(req.Strings, tuning, req.Root, req.ScaleType)
	if err != nil {
		return render.Sheet{}, err
	}
	return render.Sheet{
		Strings:   req.Strings,
		Tuning:    tuning,
		ScaleType: req.ScaleType,
		Diagram:   d,
	}, nil
}

// ResolveTuning parses tuning text, falling back to the standard tuning when
// the text is blank.
func ResolveTuning(text string, stringCount int) (theory.Tuning, error) {
	if strings.TrimSpace(text) == "" {
		t, ok := theory.StandardTuning(stringCount)
		if !ok {
			return nil, theory.ErrUnknownStringCount
		}
		return t, nil
	}
	return theory.ParseTuning(text, stringCount)
}

func tuningResponse(n int, t theory.Tuning) *model.TuningResponse {
	return &model.TuningResponse{Strings: n, Notes: t, Text: t.String()}
}
