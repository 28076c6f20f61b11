package model

import (
	"time"

	"github.com/makeasinger/fretboard/internal/theory"
)

// SongbookStartRequest represents the request to start a songbook job.
// Empty roots means all twelve; empty scale types means both.
type SongbookStartRequest struct {
	Strings    int                `json:"strings" validate:"required,min=4,max=8"`
	Tuning     string             `json:"tuning" validate:"max=128"`
	ScaleTypes []theory.ScaleType `json:"scaleTypes" validate:"omitempty,max=2,dive,oneof=natural harmonic"`
	Roots      []string           `json:"roots" validate:"omitempty,max=24,dive,required,max=32"`
	Format     Format             `json:"format" validate:"omitempty,oneof=json msgpack txt"`
}

// SongbookStartResponse represents the response when starting a songbook
type SongbookStartResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	Diagrams  int       `json:"diagrams"`
	CreatedAt time.Time `json:"createdAt"`
}

// SongbookStatusResponse represents the status of a songbook job
type SongbookStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	RetryCount  int        `json:"retryCount"`
}

// SongbookResultResponse represents the result of a completed songbook
type SongbookResultResponse struct {
	ID         string             `json:"id"`
	FileURL    string             `json:"fileUrl"`
	Size       int64              `json:"size"`
	Format     Format             `json:"format"`
	Diagrams   int                `json:"diagrams"`
	Strings    int                `json:"strings"`
	Tuning     []string           `json:"tuning"`
	ScaleTypes []theory.ScaleType `json:"scaleTypes"`
	Roots      []string           `json:"roots"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// SongbookCancelResponse represents the response when canceling a songbook
type SongbookCancelResponse struct {
	Success bool      `json:"success"`
	JobID   string    `json:"jobId"`
	Status  JobStatus `json:"status"`
}
