package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/render"
	"github.com/makeasinger/fretboard/internal/theory"
)

const (
	TaskTypeSongbook = "songbook:generate"
	QueueSongbook    = "songbook"

	jobTTL = 24 * time.Hour

	maxTxRetries = 5
)

// SongbookTask is the asynq payload for TaskTypeSongbook
type SongbookTask struct {
	JobID   string                   `json:"jobId"`
	Payload model.SongbookJobPayload `json:"payload"`
}

// SongbookService handles songbook job management
type SongbookService struct {
	redis       *redis.Client
	asynqClient *asynq.Client
}

func NewSongbookService(redisClient *redis.Client, asynqClient *asynq.Client) *SongbookService {
	return &SongbookService{
		redis:       redisClient,
		asynqClient: asynqClient,
	}
}

// PrepareSongbook checks a request and fills in defaults. Bad notes and
// tunings fail here so they never become failed jobs.
func PrepareSongbook(req *model.SongbookStartRequest) (*model.SongbookJobPayload, error) {
	tuning, err := ResolveTuning(req.Tuning, req.Strings)
	if err != nil {
		return nil, err
	}
	for i, note := range tuning {
		if !theory.IsValidNote(note) {
			return nil, &theory.InvalidTuningNoteError{String: i, Note: note}
		}
	}

	roots := req.Roots
	if len(roots) == 0 {
		roots = theory.SharpNames()
	}
	for _, r := range roots {
		if !theory.IsValidNote(r) {
			return nil, fmt.Errorf("%w: %q", theory.ErrInvalidKey, r)
		}
	}

	scales := req.ScaleTypes
	if len(scales) == 0 {
		scales = append([]theory.ScaleType(nil), theory.ScaleTypes...)
	}
	for _, st := range scales {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: %q", theory.ErrInvalidScaleType, st)
		}
	}

	format := req.Format
	if format == "" {
		format = model.FormatJSON
	}
	if _, err := render.ParseFormat(string(format)); err != nil {
		return nil, err
	}

	return &model.SongbookJobPayload{
		Strings:    req.Strings,
		Tuning:     tuning,
		ScaleTypes: scales,
		Roots:      roots,
		Format:     format,
	}, nil
}

// StartSongbook queues a new songbook job
func (s *SongbookService) StartSongbook(ctx context.Context, owner string, req *model.SongbookStartRequest) (*model.SongbookStartResponse, error) {
	payload, err := PrepareSongbook(req)
	if err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	now := time.Now()

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job := &model.Job{
		ID:        jobID,
		Type:      model.JobTypeSongbook,
		Status:    model.JobStatusQueued,
		Owner:     owner,
		Payload:   payloadBytes,
		CreatedAt: now,
	}
	if err := s.saveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	task, err := NewSongbookTask(jobID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	_, err = s.asynqClient.EnqueueContext(ctx, task,
		asynq.Queue(QueueSongbook),
		asynq.MaxRetry(3),
		asynq.Retention(jobTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return &model.SongbookStartResponse{
		JobID:     jobID,
		Status:    model.JobStatusQueued,
		Diagrams:  len(payload.Roots) * len(payload.ScaleTypes),
		CreatedAt: now,
	}, nil
}

// GetStatus returns the current status of a songbook job
func (s *SongbookService) GetStatus(ctx context.Context, owner, jobID string) (*model.SongbookStatusResponse, error) {
	job, err := s.ownedJob(ctx, owner, jobID)
	if err != nil {
		return nil, err
	}

	return &model.SongbookStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		RetryCount:  job.RetryCount,
	}, nil
}

// GetResult returns the result of a completed songbook job
func (s *SongbookService) GetResult(ctx context.Context, owner, jobID string) (*model.SongbookResultResponse, error) {
	job, err := s.ownedJob(ctx, owner, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != model.JobStatusSucceeded {
		return nil, ErrJobNotCompleted
	}

	var result model.SongbookResultResponse
	if err := json.Unmarshal(job.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// CancelSongbook cancels a songbook job
func (s *SongbookService) CancelSongbook(ctx context.Context, owner, jobID string) (*model.SongbookCancelResponse, error) {
	err := s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Owner != "" && owner != "" && job.Owner != owner {
			return ErrJobForbidden
		}
		if job.Status.Finished() {
			return ErrJobAlreadyCompleted
		}
		job.Status = model.JobStatusCanceled
		now := time.Now()
		job.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.SongbookCancelResponse{
		Success: true,
		JobID:   jobID,
		Status:  model.JobStatusCanceled,
	}, nil
}

// IsCanceled reports whether the job was canceled (called by worker)
func (s *SongbookService) IsCanceled(ctx context.Context, jobID string) (bool, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return false, err
	}
	return job.Status == model.JobStatusCanceled, nil
}

// UpdateJobProgress updates job progress (called by worker)
func (s *SongbookService) UpdateJobProgress(ctx context.Context, jobID string, progress int, step string) error {
	err := s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Status.Finished() {
			return ErrJobAlreadyCompleted
		}
		job.Progress = progress
		job.CurrentStep = step
		if job.Status == model.JobStatusQueued {
			job.Status = model.JobStatusRunning
			now := time.Now()
			job.StartedAt = &now
		}
		return nil
	})
	if errors.Is(err, ErrJobAlreadyCompleted) {
		return nil
	}
	return err
}

// CompleteJob marks job as completed (called by worker). A job that already
// finished, canceled ones included, is left as is and ErrJobAlreadyCompleted
// is returned.
func (s *SongbookService) CompleteJob(ctx context.Context, jobID string, result *model.SongbookResultResponse) error {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Status.Finished() {
			return ErrJobAlreadyCompleted
		}
		job.Status = model.JobStatusSucceeded
		job.Progress = 100
		job.CurrentStep = ""
		job.Result = resultBytes
		now := time.Now()
		job.CompletedAt = &now
		return nil
	})
}

// FailJob marks job as failed (called by worker). Like CompleteJob it never
// overwrites a finished job.
func (s *SongbookService) FailJob(ctx context.Context, jobID string, errMsg string) error {
	return s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Status.Finished() {
			return ErrJobAlreadyCompleted
		}
		job.Status = model.JobStatusFailed
		job.Error = &errMsg
		now := time.Now()
		job.CompletedAt = &now
		return nil
	})
}

// SetRetryCount records how many times the task was retried (called by worker)
func (s *SongbookService) SetRetryCount(ctx context.Context, jobID string, retry int) error {
	return s.updateJob(ctx, jobID, func(job *model.Job) error {
		job.RetryCount = retry
		return nil
	})
}

// Helper methods

func (s *SongbookService) ownedJob(ctx context.Context, owner, jobID string) (*model.Job, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Owner != "" && owner != "" && job.Owner != owner {
		return nil, ErrJobForbidden
	}
	return job, nil
}

// updateJob applies fn to the stored job inside a WATCH transaction, so a
// concurrent cancel is never overwritten. Nothing is written when fn fails.
func (s *SongbookService) updateJob(ctx context.Context, jobID string, fn func(*model.Job) error) error {
	key := jobKey(jobID)
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			job, err := decodeJob(tx.Get(ctx, key))
			if err != nil {
				return err
			}
			if err := fn(job); err != nil {
				return err
			}
			data, err := json.Marshal(job)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, jobTTL)
				return nil
			})
			return err
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("job %s: too many concurrent updates", jobID)
}

func (s *SongbookService) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, jobKey(job.ID), data, jobTTL).Err()
}

func (s *SongbookService) getJob(ctx context.Context, jobID string) (*model.Job, error) {
	return decodeJob(s.redis.Get(ctx, jobKey(jobID)))
}

func decodeJob(cmd *redis.StringCmd) (*model.Job, error) {
	data, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

func jobKey(jobID string) string {
	return fmt.Sprintf("job:%s", jobID)
}

// NewSongbookTask wraps a job payload for the queue
func NewSongbookTask(jobID string, payload *model.SongbookJobPayload) (*asynq.Task, error) {
	data, err := json.Marshal(SongbookTask{JobID: jobID, Payload: *payload})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSongbook, data), nil
}

// BuildSongbook generates every (root, scale type) diagram of the payload,
// at most limit at a time. Sheets come back ordered by root, then scale type.
// progress, when set, is called after each diagram with the running count;
// calls may come from several goroutines.
func BuildSongbook(ctx context.Context, payload *model.SongbookJobPayload, limit int, progress func(done, total int)) ([]render.Sheet, error) {
	total := len(payload.Roots) * len(payload.ScaleTypes)
	sheets := make([]render.Sheet, total)
	tuning := theory.Tuning(payload.Tuning)

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	var done atomic.Int64
	for i, root := range payload.Roots {
		for j, st := range payload.ScaleTypes {
			idx := i*len(payload.ScaleTypes) + j
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				d, err := theory.Generate(payload.Strings, tuning, root, st)
				if err != nil {
					return fmt.Errorf("%s %s: %w", root, st, err)
				}
				sheets[idx] = render.Sheet{
					Strings:   payload.Strings,
					Tuning:    tuning,
					ScaleType: st,
					Diagram:   d,
				}
				n := done.Add(1)
				if progress != nil {
					progress(int(n), total)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sheets, nil
}
