package notify

import "github.com/nhle/tasknest/internal/model"

// Queue buffers notifications for a consumer such as the status bar.
// When the buffer is full new notifications are dropped rather than
// blocking the producer.
type Queue struct {
	ch chan model.Notification
}

// NewQueue creates a Queue holding up to size pending notifications.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{ch: make(chan model.Notification, size)}
}

// Notify enqueues n without blocking.
func (q *Queue) Notify(n model.Notification) {
	select {
	case q.ch <- n:
	default:
	}
}

// C exposes the receive side for consumers that block on it.
func (q *Queue) C() <-chan model.Notification {
	return q.ch
}

// Drain returns every notification currently buffered.
func (q *Queue) Drain() []model.Notification {
	var out []model.Notification
	for {
		select {
		case n := <-q.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}
