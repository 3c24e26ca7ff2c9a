package sync

import (
	"context"
	"encoding/json"
	"errors"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasknest/internal/logger"
	"github.com/nhle/tasknest/internal/store"
)

// ErrStopped is returned for jobs enqueued after Stop.
var ErrStopped = errors.New("writer stopped")

// writeTimeout is the maximum time allowed for a single durable write.
const writeTimeout = 5 * time.Second

// Job is one durable write. A job with Remove set deletes Key; otherwise
// Value is saved at Key.
type Job struct {
	Key    string
	Value  json.RawMessage
	Remove bool

	// Done, when set, is called from the writer goroutine with the outcome.
	Done func(err error)

	barrier chan struct{}
}

// WriteResultMsg is a tea.Msg sent after each job is applied.
type WriteResultMsg struct {
	Key    string
	Remove bool
	Err    error
}

// Writer applies durable writes for one storage scope on a single
// goroutine, strictly in the order they were enqueued. Enqueue never waits
// on the medium.
type Writer struct {
	adapter  store.Adapter
	resultCh chan WriteResultMsg

	mu      gosync.Mutex
	cond    *gosync.Cond
	queue   []Job
	pending int
	stopped bool
	done    chan struct{}
}

// NewWriter starts a writer in front of adapter.
func NewWriter(adapter store.Adapter) *Writer {
	w := &Writer{
		adapter:  adapter,
		resultCh: make(chan WriteResultMsg, 16),
		done:     make(chan struct{}),
	}
	w.cond = gosync.NewCond(&w.mu)
	go w.run()
	return w
}

// Enqueue schedules a job behind every job enqueued before it.
func (w *Writer) Enqueue(job Job) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		if job.Done != nil {
			job.Done(ErrStopped)
		}
		return
	}
	w.queue = append(w.queue, job)
	if job.barrier == nil {
		w.pending++
	}
	w.mu.Unlock()
	w.cond.Signal()
}

// Pending returns the number of writes not yet applied.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// Flush blocks until every job enqueued before the call has been applied,
// or ctx is done.
func (w *Writer) Flush(ctx context.Context) error {
	barrier := make(chan struct{})

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.queue = append(w.queue, Job{barrier: barrier})
	w.mu.Unlock()
	w.cond.Signal()

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop applies the remaining queue, then halts the goroutine. Later jobs
// fail with ErrStopped.
func (w *Writer) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.stopped = true
	w.mu.Unlock()
	w.cond.Broadcast()
	<-w.done
}

// run is the writer loop.
func (w *Writer) run() {
	defer close(w.done)

	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.stopped {
			w.cond.Wait()
		}
		if len(w.queue) == 0 && w.stopped {
			w.mu.Unlock()
			return
		}
		job := w.queue[0]
		w.queue[0] = Job{}
		w.queue = w.queue[1:]
		w.mu.Unlock()

		if job.barrier != nil {
			close(job.barrier)
			continue
		}

		err := w.apply(job)

		w.mu.Lock()
		w.pending--
		w.mu.Unlock()

		if job.Done != nil {
			job.Done(err)
		}
		w.sendResult(WriteResultMsg{Key: job.Key, Remove: job.Remove, Err: err})
	}
}

// apply performs a single job against the adapter.
func (w *Writer) apply(job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	if job.Remove {
		err = w.adapter.Remove(ctx, job.Key)
	} else {
		err = w.adapter.Save(ctx, job.Key, job.Value)
	}
	if err != nil {
		logger.Warn("durable write failed", "key", job.Key, "remove", job.Remove, "error", err)
	} else {
		logger.Debug("durable write applied", "key", job.Key, "remove", job.Remove)
	}
	return err
}

// sendResult sends a WriteResultMsg on the result channel without blocking.
func (w *Writer) sendResult(msg WriteResultMsg) {
	select {
	case w.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the writer
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next write result.
// Call it again after handling each WriteResultMsg to keep listening.
func (w *Writer) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-w.resultCh:
			return result
		case <-w.done:
			return nil
		}
	}
}
