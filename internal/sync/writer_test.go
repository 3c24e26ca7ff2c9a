package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gosync "sync"
	"testing"
	"time"

	"github.com/nhle/tasknest/internal/store"
)

// slowAdapter records the order writes land in and delays each one.
type slowAdapter struct {
	*store.MemoryStore
	delay time.Duration

	mu    gosync.Mutex
	order []string
}

func (a *slowAdapter) Save(ctx context.Context, key string, value json.RawMessage) error {
	time.Sleep(a.delay)
	a.mu.Lock()
	a.order = append(a.order, string(value))
	a.mu.Unlock()
	return a.MemoryStore.Save(ctx, key, value)
}

func (a *slowAdapter) writes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.order...)
}

func TestWriterAppliesInOrder(t *testing.T) {
	t.Parallel()
	a := &slowAdapter{MemoryStore: store.NewMemoryStore(), delay: time.Millisecond}
	w := NewWriter(a)
	defer w.Stop()

	for i := range 20 {
		w.Enqueue(Job{Key: "ns/u/tasks", Value: json.RawMessage(fmt.Sprintf("%d", i))})
	}
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	got := a.writes()
	if len(got) != 20 {
		t.Fatalf("Expected 20 writes, got %d", len(got))
	}
	for i, v := range got {
		if v != fmt.Sprintf("%d", i) {
			t.Fatalf("Write %d out of order: got %s", i, v)
		}
	}

	raw, ok := a.Load(context.Background(), "ns/u/tasks")
	if !ok || string(raw) != "19" {
		t.Errorf("Expected last write to win, got %s", raw)
	}
	if w.Pending() != 0 {
		t.Errorf("Expected no pending writes after Flush, got %d", w.Pending())
	}
}

func TestWriterReportsFailures(t *testing.T) {
	t.Parallel()
	m := store.NewMemoryStore()
	full := errors.New("disk full")
	m.FailWrites(full)
	w := NewWriter(m)
	defer w.Stop()

	done := make(chan error, 1)
	w.Enqueue(Job{Key: "k", Value: json.RawMessage(`[]`), Done: func(err error) { done <- err }})

	select {
	case err := <-done:
		if !errors.Is(err, full) {
			t.Errorf("Expected %v, got %v", full, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for job result")
	}

	msg := w.WaitForNextResult()()
	result, ok := msg.(WriteResultMsg)
	if !ok {
		t.Fatalf("Expected WriteResultMsg, got %T", msg)
	}
	if result.Key != "k" || !errors.Is(result.Err, full) {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestWriterRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := store.NewMemoryStore()
	w := NewWriter(m)
	defer w.Stop()

	w.Enqueue(Job{Key: "k", Value: json.RawMessage(`{}`)})
	w.Enqueue(Job{Key: "k", Remove: true})
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if m.Has("k") {
		t.Error("Expected key removed after save then remove")
	}
}

func TestWriterStopDrainsQueue(t *testing.T) {
	t.Parallel()
	a := &slowAdapter{MemoryStore: store.NewMemoryStore(), delay: 2 * time.Millisecond}
	w := NewWriter(a)

	for i := range 5 {
		w.Enqueue(Job{Key: "k", Value: json.RawMessage(fmt.Sprintf("%d", i))})
	}
	w.Stop()

	if n := len(a.writes()); n != 5 {
		t.Errorf("Expected Stop to apply all 5 writes, got %d", n)
	}

	var got error
	w.Enqueue(Job{Key: "k", Value: json.RawMessage(`9`), Done: func(err error) { got = err }})
	if !errors.Is(got, ErrStopped) {
		t.Errorf("Expected ErrStopped after Stop, got %v", got)
	}

	// Stop is idempotent and Flush on a stopped writer returns at once.
	w.Stop()
	if err := w.Flush(context.Background()); err != nil {
		t.Errorf("Flush after Stop failed: %v", err)
	}
}

func TestWriterFlushHonoursContext(t *testing.T) {
	t.Parallel()
	a := &slowAdapter{MemoryStore: store.NewMemoryStore(), delay: 200 * time.Millisecond}
	w := NewWriter(a)
	defer w.Stop()

	w.Enqueue(Job{Key: "k", Value: json.RawMessage(`1`)})
	if w.Pending() != 1 {
		t.Errorf("Expected 1 pending write, got %d", w.Pending())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := w.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}
