package notify

import (
	"testing"

	"github.com/nhle/tasknest/internal/model"
)

func TestQueueDropsWhenFull(t *testing.T) {
	t.Parallel()
	q := NewQueue(2)
	Success(q, "t1", "one")
	Failure(q, "t2", "two")
	Success(q, "t3", "three")

	got := q.Drain()
	if len(got) != 2 {
		t.Fatalf("Expected 2 buffered notifications, got %d", len(got))
	}
	if got[0].Message != "one" || got[1].Level != model.LevelError {
		t.Errorf("Unexpected notifications: %+v", got)
	}
	if len(q.Drain()) != 0 {
		t.Error("Expected queue empty after Drain")
	}
}

func TestMultiFansOut(t *testing.T) {
	t.Parallel()
	var a, b []string
	m := Multi{
		Func(func(n model.Notification) { a = append(a, n.Message) }),
		Func(func(n model.Notification) { b = append(b, n.Message) }),
		Log{},
	}
	Success(m, "", "hello")

	if len(a) != 1 || len(b) != 1 || a[0] != "hello" {
		t.Errorf("Expected both notifiers to receive the message, got %v and %v", a, b)
	}
}

func TestNewStampsIdentity(t *testing.T) {
	t.Parallel()
	x := New(model.LevelSuccess, "t", "m")
	y := New(model.LevelSuccess, "t", "m")
	if x.ID == "" || x.ID == y.ID {
		t.Error("Expected unique notification ids")
	}
	if x.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}
