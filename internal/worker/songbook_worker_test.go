package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/makeasinger/fretboard/internal/client"
	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/render"
	"github.com/makeasinger/fretboard/internal/service"
	"github.com/makeasinger/fretboard/internal/theory"
)

type fakeJobs struct {
	mu       sync.Mutex
	canceled bool
	progress []int
	result   *model.SongbookResultResponse
	failure  string
	// completeErr is returned by CompleteJob; ErrJobAlreadyCompleted also
	// flips the job to canceled, as a user cancel racing the worker would.
	completeErr error
}

func (f *fakeJobs) IsCanceled(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canceled, nil
}

func (f *fakeJobs) UpdateJobProgress(_ context.Context, _ string, progress int, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = append(f.progress, progress)
	return nil
}

func (f *fakeJobs) CompleteJob(_ context.Context, _ string, result *model.SongbookResultResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		if errors.Is(f.completeErr, service.ErrJobAlreadyCompleted) {
			f.canceled = true
		}
		return f.completeErr
	}
	f.result = result
	return nil
}

func (f *fakeJobs) FailJob(_ context.Context, _ string, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failure = errMsg
	return nil
}

func (f *fakeJobs) SetRetryCount(context.Context, string, int) error { return nil }

type fakeHub struct {
	mu     sync.Mutex
	events []string
}

func (h *fakeHub) record(e string) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}

func (h *fakeHub) BroadcastProgress(string, int, model.JobStatus, string) { h.record("progress") }
func (h *fakeHub) BroadcastComplete(string, any)                         { h.record("complete") }
func (h *fakeHub) BroadcastCanceled(string)                              { h.record("canceled") }
func (h *fakeHub) BroadcastError(_ string, code, _ string)                { h.record(code) }

func (h *fakeHub) last() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) == 0 {
		return ""
	}
	return h.events[len(h.events)-1]
}

func songbookTask(t *testing.T, p model.SongbookJobPayload) *asynq.Task {
	t.Helper()
	task, err := service.NewSongbookTask("job-1", &p)
	if err != nil {
		t.Fatal(err)
	}
	return task
}

func payload(format model.Format, roots ...string) model.SongbookJobPayload {
	return model.SongbookJobPayload{
		Strings:    6,
		Tuning:     []string{"E", "A", "D", "G", "B", "E"},
		ScaleTypes: []theory.ScaleType{theory.ScaleNatural, theory.ScaleHarmonic},
		Roots:      roots,
		Format:     format,
	}
}

func TestProcessTask_Success(t *testing.T) {
	jobs := &fakeJobs{}
	hub := &fakeHub{}
	store := client.NewMemoryStorage("https://cdn.test", 0)
	w := NewSongbookWorker(jobs, store, hub, 3)

	if err := w.ProcessTask(context.Background(), songbookTask(t, payload(model.FormatJSON, "A", "D", "E"))); err != nil {
		t.Fatal(err)
	}

	if jobs.result == nil {
		t.Fatal("job not completed")
	}
	if jobs.result.Diagrams != 6 || jobs.result.Format != model.FormatJSON {
		t.Errorf("result = %+v", jobs.result)
	}
	if !strings.Contains(jobs.result.FileURL, "/songbooks/") {
		t.Errorf("file url = %q", jobs.result.FileURL)
	}
	if hub.last() != "complete" {
		t.Errorf("last event = %q", hub.last())
	}
	for i := 1; i < len(jobs.progress); i++ {
		if jobs.progress[i] < jobs.progress[i-1] {
			t.Errorf("progress went backwards: %v", jobs.progress)
		}
	}

	key := strings.TrimPrefix(strings.SplitN(jobs.result.FileURL, "?", 2)[0], "https://cdn.test/")
	obj, ok := store.Get(key)
	if !ok {
		t.Fatalf("songbook %q not stored", key)
	}
	var entries []render.BundleEntry
	if err := json.Unmarshal(obj.Data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 6 || entries[0].Root != "A" || entries[5].Root != "E" {
		t.Errorf("bundle order: %+v", entries)
	}
}

func TestProcessTask_CanceledSkips(t *testing.T) {
	jobs := &fakeJobs{canceled: true}
	hub := &fakeHub{}
	store := client.NewMemoryStorage("https://cdn.test", 0)
	w := NewSongbookWorker(jobs, store, hub, 2)

	if err := w.ProcessTask(context.Background(), songbookTask(t, payload(model.FormatText, "C"))); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 || jobs.result != nil {
		t.Error("canceled job should not produce output")
	}
	if hub.last() != "canceled" {
		t.Errorf("last event = %q", hub.last())
	}
}

func TestProcessTask_BadRootFailsWithoutRetry(t *testing.T) {
	jobs := &fakeJobs{}
	hub := &fakeHub{}
	w := NewSongbookWorker(jobs, client.NewMemoryStorage("https://cdn.test", 0), hub, 1)

	err := w.ProcessTask(context.Background(), songbookTask(t, payload(model.FormatJSON, "C", "Xb")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want SkipRetry", err)
	}
	if !strings.Contains(jobs.failure, "invalid key") {
		t.Errorf("failure = %q", jobs.failure)
	}
	if hub.last() != "SONGBOOK_FAILED" {
		t.Errorf("last event = %q", hub.last())
	}
}

func TestProcessTask_MalformedPayload(t *testing.T) {
	w := NewSongbookWorker(&fakeJobs{}, client.NewMemoryStorage("https://cdn.test", 0), &fakeHub{}, 1)
	err := w.ProcessTask(context.Background(), asynq.NewTask(service.TaskTypeSongbook, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("err = %v", err)
	}
}

type brokenStorage struct {
	*client.MemoryStorage
}

func (brokenStorage) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", errors.New("bucket unavailable")
}

func attempt(retry, maxRetry int) func(context.Context) (int, int, bool) {
	return func(context.Context) (int, int, bool) { return retry, maxRetry, true }
}

func TestProcessTask_UploadErrorRetriesBeforeFailing(t *testing.T) {
	jobs := &fakeJobs{}
	hub := &fakeHub{}
	w := NewSongbookWorker(jobs, brokenStorage{client.NewMemoryStorage("https://cdn.test", 0)}, hub, 1)
	task := songbookTask(t, payload(model.FormatJSON, "A"))

	w.retryInfo = attempt(0, 3)
	err := w.ProcessTask(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want retryable error", err)
	}
	if jobs.failure != "" {
		t.Errorf("job failed on a retryable attempt: %q", jobs.failure)
	}
	if hub.last() == "SONGBOOK_FAILED" {
		t.Error("failure broadcast before the last attempt")
	}

	w.retryInfo = attempt(3, 3)
	if err := w.ProcessTask(context.Background(), task); err == nil {
		t.Fatal("expected error on last attempt")
	}
	if !strings.Contains(jobs.failure, "Upload failed") {
		t.Errorf("failure = %q", jobs.failure)
	}
	if hub.last() != "SONGBOOK_FAILED" {
		t.Errorf("last event = %q", hub.last())
	}
}

func TestProcessTask_SaveErrorRetries(t *testing.T) {
	jobs := &fakeJobs{completeErr: errors.New("redis down")}
	store := client.NewMemoryStorage("https://cdn.test", 0)
	w := NewSongbookWorker(jobs, store, &fakeHub{}, 1)
	w.retryInfo = attempt(1, 3)

	if err := w.ProcessTask(context.Background(), songbookTask(t, payload(model.FormatText, "B"))); err == nil {
		t.Fatal("expected error")
	}
	if jobs.failure != "" {
		t.Errorf("failure = %q, want job left for retry", jobs.failure)
	}
	if store.Len() != 0 {
		t.Errorf("orphaned upload kept: %d objects", store.Len())
	}
}

func TestProcessTask_CanceledWhileRendering(t *testing.T) {
	jobs := &fakeJobs{completeErr: service.ErrJobAlreadyCompleted}
	hub := &fakeHub{}
	store := client.NewMemoryStorage("https://cdn.test", 0)
	w := NewSongbookWorker(jobs, store, hub, 2)

	if err := w.ProcessTask(context.Background(), songbookTask(t, payload(model.FormatJSON, "C", "G"))); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if jobs.result != nil || jobs.failure != "" {
		t.Errorf("job overwritten: result %+v failure %q", jobs.result, jobs.failure)
	}
	if store.Len() != 0 {
		t.Errorf("upload kept for canceled job: %d objects", store.Len())
	}
	if hub.last() != "canceled" {
		t.Errorf("last event = %q", hub.last())
	}
}
