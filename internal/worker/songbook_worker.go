package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/makeasinger/fretboard/internal/client"
	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/render"
	"github.com/makeasinger/fretboard/internal/service"
)

// JobStore is the part of the songbook service the worker drives
type JobStore interface {
	IsCanceled(ctx context.Context, jobID string) (bool, error)
	UpdateJobProgress(ctx context.Context, jobID string, progress int, step string) error
	CompleteJob(ctx context.Context, jobID string, result *model.SongbookResultResponse) error
	FailJob(ctx context.Context, jobID string, errMsg string) error
	SetRetryCount(ctx context.Context, jobID string, retry int) error
}

// Notifier receives job updates for websocket subscribers
type Notifier interface {
	BroadcastProgress(jobID string, progress int, status model.JobStatus, step string)
	BroadcastComplete(jobID string, result any)
	BroadcastCanceled(jobID string)
	BroadcastError(jobID string, code, message string)
}

// SongbookWorker processes songbook jobs
type SongbookWorker struct {
	jobs        JobStore
	storage     client.StorageClient
	hub         Notifier
	concurrency int
	// retryInfo reports the attempt being run; tests swap it out since
	// asynq only sets these values on contexts it creates.
	retryInfo func(ctx context.Context) (retry, maxRetry int, ok bool)
}

// NewSongbookWorker creates a new songbook worker
func NewSongbookWorker(jobs JobStore, storage client.StorageClient, hub Notifier, concurrency int) *SongbookWorker {
	return &SongbookWorker{
		jobs:        jobs,
		storage:     storage,
		hub:         hub,
		concurrency: concurrency,
		retryInfo:   asynqRetryInfo,
	}
}

func asynqRetryInfo(ctx context.Context) (int, int, bool) {
	retry, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return 0, 0, false
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	return retry, maxRetry, ok
}

// Progress milestones. Diagram generation fills the range between
// progressGenerate and progressRender.
const (
	progressStart    = 5
	progressGenerate = 10
	progressRender   = 80
	progressUpload   = 90
)

// ProcessTask handles songbook task processing
func (w *SongbookWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var task service.SongbookTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w: %w", err, asynq.SkipRetry)
	}
	jobID := task.JobID
	payload := &task.Payload

	if retry, _, ok := w.retryInfo(ctx); ok && retry > 0 {
		if err := w.jobs.SetRetryCount(ctx, jobID, retry); err != nil {
			log.Printf("Failed to record retry for job %s: %v", jobID, err)
		}
	}

	if w.canceled(ctx, jobID) {
		log.Printf("Songbook job %s canceled before start", jobID)
		return nil
	}
	log.Printf("Starting songbook job: %s", jobID)

	format, err := render.ParseFormat(string(payload.Format))
	if err != nil {
		w.failJob(ctx, jobID, err.Error())
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	w.updateProgress(ctx, jobID, progressStart, "Preparing songbook...")

	var mu sync.Mutex
	lastReported := 0
	sheets, err := service.BuildSongbook(ctx, payload, w.concurrency, func(done, total int) {
		pct := progressGenerate + (progressRender-progressGenerate)*done/total
		mu.Lock()
		defer mu.Unlock()
		if pct <= lastReported {
			return
		}
		lastReported = pct
		w.updateProgress(ctx, jobID, pct, fmt.Sprintf("Generating diagrams %d/%d", done, total))
	})
	if err != nil {
		w.failJob(ctx, jobID, fmt.Sprintf("Diagram generation failed: %v", err))
		// deterministic, retrying cannot succeed
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	if w.canceled(ctx, jobID) {
		log.Printf("Songbook job %s canceled", jobID)
		return nil
	}

	w.updateProgress(ctx, jobID, progressRender, "Rendering songbook...")
	var buf bytes.Buffer
	if err := render.WriteBundle(&buf, format, sheets); err != nil {
		return w.retryOrFail(ctx, jobID, fmt.Sprintf("Render failed: %v", err), err)
	}

	w.updateProgress(ctx, jobID, progressUpload, "Uploading songbook...")
	resultID := uuid.New().String()
	key := client.ExportKey("songbooks", resultID, format.Extension())
	if _, err := w.storage.Upload(ctx, key, bytes.NewReader(buf.Bytes()), format.ContentType()); err != nil {
		return w.retryOrFail(ctx, jobID, fmt.Sprintf("Upload failed: %v", err), err)
	}
	fileURL, err := w.storage.GetSignedURL(ctx, key, service.ExportTTL)
	if err != nil {
		w.discard(ctx, key)
		return w.retryOrFail(ctx, jobID, fmt.Sprintf("Upload failed: %v", err), err)
	}

	result := &model.SongbookResultResponse{
		ID:         resultID,
		FileURL:    fileURL,
		Size:       int64(buf.Len()),
		Format:     model.Format(format),
		Diagrams:   len(sheets),
		Strings:    payload.Strings,
		Tuning:     payload.Tuning,
		ScaleTypes: payload.ScaleTypes,
		Roots:      payload.Roots,
		CreatedAt:  time.Now(),
	}

	if err := w.jobs.CompleteJob(ctx, jobID, result); err != nil {
		w.discard(ctx, key)
		if errors.Is(err, service.ErrJobAlreadyCompleted) {
			// canceled while rendering
			log.Printf("Songbook job %s finished elsewhere, dropping result", jobID)
			w.canceled(ctx, jobID)
			return nil
		}
		return w.retryOrFail(ctx, jobID, "Failed to save result", err)
	}

	w.hub.BroadcastComplete(jobID, result)
	log.Printf("Songbook job %s completed (%d diagrams)", jobID, len(sheets))
	return nil
}

func (w *SongbookWorker) canceled(ctx context.Context, jobID string) bool {
	canceled, err := w.jobs.IsCanceled(ctx, jobID)
	if err != nil {
		log.Printf("Failed to read job %s: %v", jobID, err)
		return false
	}
	if canceled {
		w.hub.BroadcastCanceled(jobID)
	}
	return canceled
}

func (w *SongbookWorker) updateProgress(ctx context.Context, jobID string, progress int, step string) {
	if err := w.jobs.UpdateJobProgress(ctx, jobID, progress, step); err != nil {
		log.Printf("Failed to update progress: %v", err)
	}
	w.hub.BroadcastProgress(jobID, progress, model.JobStatusRunning, step)
}

func (w *SongbookWorker) failJob(ctx context.Context, jobID, errMsg string) {
	if err := w.jobs.FailJob(ctx, jobID, errMsg); err != nil {
		if errors.Is(err, service.ErrJobAlreadyCompleted) {
			return
		}
		log.Printf("Failed to mark job as failed: %v", err)
	}
	w.hub.BroadcastError(jobID, "SONGBOOK_FAILED", errMsg)
}

// retryOrFail returns err for asynq to retry. Only the last attempt marks
// the job failed; earlier ones leave it running.
func (w *SongbookWorker) retryOrFail(ctx context.Context, jobID, errMsg string, err error) error {
	retry, maxRetry, ok := w.retryInfo(ctx)
	if ok && retry < maxRetry {
		log.Printf("Songbook job %s attempt %d/%d failed, retrying: %s", jobID, retry+1, maxRetry+1, errMsg)
		w.updateProgress(ctx, jobID, progressStart, "Retrying...")
		return err
	}
	w.failJob(ctx, jobID, errMsg)
	return err
}

func (w *SongbookWorker) discard(ctx context.Context, key string) {
	if err := w.storage.Delete(ctx, key); err != nil {
		log.Printf("Failed to delete %s: %v", key, err)
	}
}
