// Package tasks owns the signed-in identity's task collection. Every
// mutation is applied in memory first and then handed to a write-behind
// queue that persists the whole collection.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"

	"github.com/nhle/tasknest/internal/logger"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/notify"
	"github.com/nhle/tasknest/internal/session"
	"github.com/nhle/tasknest/internal/store"
	appsync "github.com/nhle/tasknest/internal/sync"
)

var (
	ErrNotAuthenticated = session.ErrNotAuthenticated
	ErrNotFound         = errors.New("task not found")
	ErrInvalidTask      = errors.New("invalid task")
	ErrInvalidEmail     = errors.New("invalid email address")
)

// Options configure a Store.
type Options struct {
	Session  *session.Session
	Adapter  store.Adapter
	Notifier notify.Notifier

	// SeedDemo fills an empty scope with the demo collection on Load.
	SeedDemo bool

	// Now and NewID default to time.Now and random UUIDs.
	Now   func() time.Time
	NewID func() string
}

// Store is the authoritative in-memory task collection for one signed-in
// lifetime. It is reset when the session logs out and cannot be reused
// afterwards.
type Store struct {
	sess     *session.Session
	adapter  store.Adapter
	writer   *appsync.Writer
	notifier notify.Notifier
	seed     bool
	now      func() time.Time
	newID    func() string

	mu     sync.Mutex
	tasks  []model.Task
	loaded bool
	closed bool
}

// New creates a Store bound to sess and starts its write-behind queue.
func New(opts Options) *Store {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	s := &Store{
		sess:     opts.Session,
		adapter:  opts.Adapter,
		writer:   appsync.NewWriter(opts.Adapter),
		notifier: opts.Notifier,
		seed:     opts.SeedDemo,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	opts.Session.OnLogout(func(model.Identity) { s.reset() })
	return s
}

// scope resolves the signed-in identity and its record key. Callers hold
// s.mu.
func (s *Store) scope() (model.Identity, string, error) {
	if s.closed {
		return model.Identity{}, "", ErrNotAuthenticated
	}
	id, ok := s.sess.Current()
	if !ok {
		return model.Identity{}, "", ErrNotAuthenticated
	}
	return id, store.TasksKey(s.sess.Namespace(), id.ID), nil
}

// Load reads the identity's collection, keeping only the tasks it may
// see. An absent record is seeded with the demo collection when enabled.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) error {
	key, seeded, err := s.read(ctx)
	if err != nil || !seeded {
		return err
	}
	return s.persist(key, "", "", "")
}

// read fills the in-memory collection from the medium, or from the demo
// collection when the record is absent and seeding is on. It reports
// whether it seeded. Nothing is written. Callers hold s.mu.
func (s *Store) read(ctx context.Context) (key string, seeded bool, err error) {
	id, key, err := s.scope()
	if err != nil {
		return "", false, err
	}

	var saved []model.Task
	if store.LoadJSON(ctx, s.adapter, key, &saved) {
		s.tasks = s.tasks[:0]
		for _, t := range saved {
			if t.VisibleTo(id) {
				s.tasks = append(s.tasks, t.Clone())
			}
		}
		s.loaded = true
		logger.Debug("tasks loaded", "identity", id.ID, "count", len(s.tasks))
		return key, false, nil
	}

	s.tasks = nil
	s.loaded = true
	if !s.seed {
		return key, false, nil
	}
	s.tasks = SampleTasks(id, s.now(), s.newID)
	logger.Info("seeded demo tasks", "identity", id.ID, "count", len(s.tasks))
	return key, true, nil
}

// ensureLoaded reads the collection before the first mutation so a write
// never replaces a record that was not read. A rejected mutation calls
// discard to undo the read. Callers hold s.mu.
func (s *Store) ensureLoaded(ctx context.Context) (discard func(), err error) {
	if s.loaded {
		return func() {}, nil
	}
	if _, _, err := s.read(ctx); err != nil {
		return nil, err
	}
	return func() {
		s.tasks = nil
		s.loaded = false
	}, nil
}

// Create appends a new task owned by the signed-in identity.
func (s *Store) Create(ctx context.Context, in TaskInput) (model.Task, error) {
	const failed = "Failed to create task"

	s.mu.Lock()
	defer s.mu.Unlock()

	id, key, err := s.scope()
	if err != nil {
		return model.Task{}, s.fail("", failed, err)
	}
	discard, err := s.ensureLoaded(ctx)
	if err != nil {
		return model.Task{}, s.fail("", failed, err)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		discard()
		return model.Task{}, s.fail("", failed, fmt.Errorf("%w: title is required", ErrInvalidTask))
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	status := in.Status
	if status == "" {
		status = model.StatusPending
	}
	if !priority.Valid() || !status.Valid() {
		discard()
		return model.Task{}, s.fail("", failed,
			fmt.Errorf("%w: priority %q, status %q", ErrInvalidTask, priority, status))
	}

	now := s.now()
	due := in.DueDate
	if due.IsZero() {
		due = now
	}
	task := model.Task{
		ID:          s.newID(),
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		Status:      status,
		DueDate:     due,
		CreatedAt:   now,
		UpdatedAt:   now,
		OwnerID:     id.ID,
		SharedWith:  []string{},
		Tags:        normalizeTags(in.Tags),
	}
	s.tasks = append(s.tasks, task)

	if err := s.persist(key, task.ID, "Task created successfully!", failed); err != nil {
		return task.Clone(), err
	}
	return task.Clone(), nil
}

// Update merges patch into the task with the given id.
func (s *Store) Update(ctx context.Context, taskID string, patch TaskPatch) (model.Task, error) {
	const failed = "Failed to update task"

	s.mu.Lock()
	defer s.mu.Unlock()

	_, key, err := s.scope()
	if err != nil {
		return model.Task{}, s.fail(taskID, failed, err)
	}
	discard, err := s.ensureLoaded(ctx)
	if err != nil {
		return model.Task{}, s.fail(taskID, failed, err)
	}

	i := s.index(taskID)
	if i < 0 {
		discard()
		return model.Task{}, s.fail(taskID, failed, fmt.Errorf("%w: %s", ErrNotFound, taskID))
	}

	next := s.tasks[i].Clone()
	if err := applyPatch(&next, patch); err != nil {
		discard()
		return model.Task{}, s.fail(taskID, failed, err)
	}
	next.UpdatedAt = s.stamp(next.UpdatedAt)
	s.tasks[i] = next

	if err := s.persist(key, taskID, "Task updated successfully!", failed); err != nil {
		return next.Clone(), err
	}
	return next.Clone(), nil
}

func applyPatch(t *model.Task, p TaskPatch) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return fmt.Errorf("%w: title is required", ErrInvalidTask)
		}
		t.Title = title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return fmt.Errorf("%w: priority %q", ErrInvalidTask, *p.Priority)
		}
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return fmt.Errorf("%w: status %q", ErrInvalidTask, *p.Status)
		}
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			return fmt.Errorf("%w: due date is required", ErrInvalidTask)
		}
		t.DueDate = *p.DueDate
	}
	if p.Tags != nil {
		t.Tags = normalizeTags(*p.Tags)
	}
	return nil
}

// Delete removes the task with the given id. Deleting an absent id is not
// an error and still persists the collection.
func (s *Store) Delete(ctx context.Context, taskID string) error {
	const failed = "Failed to delete task"

	s.mu.Lock()
	defer s.mu.Unlock()

	_, key, err := s.scope()
	if err != nil {
		return s.fail(taskID, failed, err)
	}
	if _, err := s.ensureLoaded(ctx); err != nil {
		return s.fail(taskID, failed, err)
	}

	s.tasks = slices.DeleteFunc(s.tasks, func(t model.Task) bool { return t.ID == taskID })
	return s.persist(key, taskID, "Task deleted successfully!", failed)
}

// Share adds email to the task's collaborators. Addresses are stored
// lower-cased and each appears at most once; sharing with an existing
// collaborator still counts as a mutation.
func (s *Store) Share(ctx context.Context, taskID, email string) (model.Task, error) {
	const failed = "Failed to share task"

	s.mu.Lock()
	defer s.mu.Unlock()

	_, key, err := s.scope()
	if err != nil {
		return model.Task{}, s.fail(taskID, failed, err)
	}
	discard, err := s.ensureLoaded(ctx)
	if err != nil {
		return model.Task{}, s.fail(taskID, failed, err)
	}

	addr, err := parseEmail(email)
	if err != nil {
		discard()
		return model.Task{}, s.fail(taskID, failed, err)
	}

	i := s.index(taskID)
	if i < 0 {
		discard()
		return model.Task{}, s.fail(taskID, failed, fmt.Errorf("%w: %s", ErrNotFound, taskID))
	}

	next := s.tasks[i].Clone()
	if !slices.Contains(next.SharedWith, addr) {
		next.SharedWith = append(next.SharedWith, addr)
	}
	next.UpdatedAt = s.stamp(next.UpdatedAt)
	s.tasks[i] = next

	msg := fmt.Sprintf("Task shared with %s!", addr)
	if err := s.persist(key, taskID, msg, failed); err != nil {
		return next.Clone(), err
	}
	return next.Clone(), nil
}

// parseEmail accepts a bare address or a "Name <address>" form and
// returns the lower-cased address.
func parseEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidEmail, s, err)
	}
	return strings.ToLower(addr.Address), nil
}

// Tasks returns a copy of the collection in stored order.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(taskID string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(taskID)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// IsLoading reports whether durable writes are still outstanding.
func (s *Store) IsLoading() bool {
	return s.writer.Pending() > 0
}

// Writer exposes the write-behind queue so a UI can subscribe to results.
func (s *Store) Writer() *appsync.Writer {
	return s.writer
}

// Flush waits until every mutation so far has reached the medium.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

// Close applies outstanding writes and stops the queue.
func (s *Store) Close() {
	s.writer.Stop()
}

// reset runs on logout: it drops the collection and drains the queue so
// no write lands after the session erases the record.
func (s *Store) reset() {
	s.mu.Lock()
	s.tasks = nil
	s.loaded = false
	s.closed = true
	s.mu.Unlock()

	s.writer.Stop()
}

func (s *Store) index(taskID string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == taskID })
}

// stamp returns the mutation time, never earlier than prev.
func (s *Store) stamp(prev time.Time) time.Time {
	now := s.now()
	if now.Before(prev) {
		return prev
	}
	return now
}

// persist snapshots the collection and queues it for writing. The success
// message is sent once the write lands; the failure message if it does
// not. Callers hold s.mu.
func (s *Store) persist(key, taskID, okMsg, failMsg string) error {
	snapshot := s.tasks
	if snapshot == nil {
		snapshot = []model.Task{}
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		err = &store.StorageError{Op: "save", Key: key, Err: err}
		return s.fail(taskID, failMsg, err)
	}

	s.writer.Enqueue(appsync.Job{
		Key:   key,
		Value: raw,
		Done: func(err error) {
			switch {
			case err != nil && failMsg != "":
				notify.Failure(s.notifier, taskID, failMsg)
			case err == nil && okMsg != "":
				notify.Success(s.notifier, taskID, okMsg)
			}
		},
	})
	return nil
}

// fail reports a failed operation and returns err unchanged.
func (s *Store) fail(taskID, msg string, err error) error {
	logger.Warn("task operation failed", "task_id", taskID, "error", err)
	if msg != "" {
		notify.Failure(s.notifier, taskID, msg)
	}
	return err
}
