package theory

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the core. Callers match them with errors.Is.
var (
	ErrInvalidNote        = errors.New("invalid note")
	ErrMalformedTuning    = errors.New("malformed tuning")
	ErrUnknownStringCount = errors.New("no standard tuning for string count")
	ErrStringCount        = errors.New("string count out of range")
	ErrTuningLength       = errors.New("tuning length does not match string count")
	ErrInvalidKey         = errors.New("invalid key")
	ErrInvalidScaleType   = errors.New("invalid scale type")
	ErrScaleNotFound      = errors.New("scale not found")
)

// InvalidTuningNoteError reports an open-string note that failed to parse
// during generation.
type InvalidTuningNoteError struct {
	String int
	Note   string
}

func (e *InvalidTuningNoteError) Error() string {
	return fmt.Sprintf("invalid note in tuning: %q (string %d)", e.Note, e.String+1)
}

// Unwrap lets errors.Is(err, ErrInvalidNote) match.
func (e *InvalidTuningNoteError) Unwrap() error {
	return ErrInvalidNote
}
