package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/makeasinger/fretboard/internal/model"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
	return nil
}

func TestHub_BroadcastToSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub()
	go h.Run(ctx)

	a := h.Subscribe("job-a")
	b := h.Subscribe("job-b")
	waitFor(t, func() bool { return h.Subscribers("job-a") == 1 && h.Subscribers("job-b") == 1 })

	h.BroadcastProgress("job-a", 40, model.JobStatusRunning, "Generating diagrams 5/12")

	var msg model.WSProgressMessage
	if err := json.Unmarshal(receive(t, a), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != model.WSMessageTypeProgress || msg.Progress != 40 || msg.JobID != "job-a" {
		t.Errorf("msg = %+v", msg)
	}

	select {
	case data := <-b.Send:
		t.Errorf("job-b received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_CompleteAndError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub()
	go h.Run(ctx)

	c := h.Subscribe("job")
	waitFor(t, func() bool { return h.Subscribers("job") == 1 })

	h.BroadcastComplete("job", map[string]string{"fileUrl": "https://cdn.test/x.json"})
	h.BroadcastError("job", "SONGBOOK_FAILED", "boom")
	h.BroadcastCanceled("job")

	var complete model.WSCompleteMessage
	if err := json.Unmarshal(receive(t, c), &complete); err != nil || complete.Type != model.WSMessageTypeComplete {
		t.Errorf("complete = %+v, %v", complete, err)
	}
	var failed model.WSErrorMessage
	if err := json.Unmarshal(receive(t, c), &failed); err != nil || failed.Error.Code != "SONGBOOK_FAILED" {
		t.Errorf("error = %+v, %v", failed, err)
	}
	var canceled model.WSCanceledMessage
	if err := json.Unmarshal(receive(t, c), &canceled); err != nil || canceled.Type != model.WSMessageTypeCanceled {
		t.Errorf("canceled = %+v, %v", canceled, err)
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub()
	go h.Run(ctx)

	c := h.Subscribe("job")
	waitFor(t, func() bool { return h.Subscribers("job") == 1 })
	h.Unsubscribe(c)
	waitFor(t, func() bool { return h.Subscribers("job") == 0 })

	if _, ok := <-c.Send; ok {
		t.Error("expected closed channel")
	}
}

func TestHub_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := h.Subscribe("job")
	waitFor(t, func() bool { return h.Subscribers("job") == 1 })
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-c.Send; ok {
		t.Error("subscriber channel should be closed on shutdown")
	}

	// Must not block once the hub is gone.
	h.Unsubscribe(c)
	late := h.Subscribe("job")
	if _, ok := <-late.Send; ok {
		t.Error("late subscriber should get a closed channel")
	}
}
