package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/nhle/tasknest/internal/model"
)

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock by d, which may be negative.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// SeqIDs returns a generator yielding "task-1", "task-2", ...
func SeqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("task-%d", n)
	}
}

// Recorder collects notifications for assertions.
type Recorder struct {
	mu   sync.Mutex
	list []model.Notification
}

// Notify records n.
func (r *Recorder) Notify(n model.Notification) {
	r.mu.Lock()
	r.list = append(r.list, n)
	r.mu.Unlock()
}

// Messages returns the recorded messages in arrival order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.list))
	for i, n := range r.list {
		out[i] = n.Message
	}
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (model.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.list) == 0 {
		return model.Notification{}, false
	}
	return r.list[len(r.list)-1], true
}

// Count returns how many notifications at level were recorded.
func (r *Recorder) Count(level model.NotificationLevel) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, note := range r.list {
		if note.Level == level {
			n++
		}
	}
	return n
}
