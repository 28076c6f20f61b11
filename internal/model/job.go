package model

import (
	"time"

	"github.com/makeasinger/fretboard/internal/theory"
)

// Job represents a background job in the system
type Job struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	Payload     []byte     `json:"payload,omitempty"`
	Result      []byte     `json:"result,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
}

// Job types
const (
	JobTypeSongbook = "songbook"
)

// SongbookJobPayload is what the worker needs to build a songbook. The
// tuning is already resolved so the worker never re-parses user text.
type SongbookJobPayload struct {
	Strings    int                `json:"strings"`
	Tuning     []string           `json:"tuning"`
	ScaleTypes []theory.ScaleType `json:"scaleTypes"`
	Roots      []string           `json:"roots"`
	Format     Format             `json:"format"`
}
