// Package tasks holds a user's task collection and persists it through a
// storage.KV after every mutation.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/storage"
)

var ErrNotFound = errors.New("tasks: task not found")

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

type Store struct {
	mu    sync.Mutex
	kv    storage.KV
	key   string
	items []model.Task
	now   func() time.Time
	newID func() string
	log   *zap.Logger
}

// Open loads the collection stored under key. A missing key yields an
// empty store.
func Open(ctx context.Context, kv storage.KV, key string, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, errors.New("tasks: nil kv")
	}
	s := &Store{
		kv:    kv,
		key:   key,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.reloadLocked(ctx); err != nil {
		return nil, err
	}
	s.log.Debug("task store opened", zap.String("key", key), zap.Int("count", len(s.items)))
	return s, nil
}

// Reload replaces the cached collection with what is currently stored, so
// a long-lived store sees writes made by other processes.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Store) reloadLocked(ctx context.Context) error {
	blob, err := s.kv.Load(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.items = []model.Task{}
		return nil
	case err != nil:
		return fmt.Errorf("load tasks: %w", err)
	}
	var items []model.Task
	if err := json.Unmarshal(blob, &items); err != nil {
		return fmt.Errorf("decode tasks %s: %w", s.key, err)
	}
	if items == nil {
		items = []model.Task{}
	}
	s.items = items
	return nil
}

// List returns copies of all tasks in insertion order.
func (s *Store) List() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.items)
}

func (s *Store) Get(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.items[idx].Clone(), nil
}

// Filter returns the tasks with the given status; the empty status matches
// every task.
func (s *Store) Filter(status model.Status) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0, len(s.items))
	for _, t := range s.items {
		if status == "" || t.Status == status {
			out = append(out, t.Clone())
		}
	}
	return out
}

// OnDate returns the tasks due on day.
func (s *Store) OnDate(day model.Date) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0)
	for _, t := range s.items {
		if t.HasDueDate() && t.DueDate == day {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (s *Store) Add(ctx context.Context, draft model.Draft) (model.Task, error) {
	d, err := model.ValidateDraft(draft)
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return model.Task{}, err
	}

	now := s.now()
	task := model.Task{
		ID:        s.newID(),
		Title:     d.Title,
		Subject:   d.Subject,
		DueDate:   d.DueDate,
		Status:    d.Status,
		CreatedAt: now,
	}
	applyStatus(&task, d.Status, now)

	next := append(cloneAll(s.items), task)
	if err := s.commit(ctx, next); err != nil {
		return model.Task{}, err
	}
	s.log.Info("task added", zap.String("task_id", task.ID), zap.String("status", string(task.Status)))
	return task.Clone(), nil
}

// Update replaces the editable fields of task id. Changing the due date
// re-arms its reminder.
func (s *Store) Update(ctx context.Context, id string, draft model.Draft) (model.Task, error) {
	d, err := model.ValidateDraft(draft)
	if err != nil {
		return model.Task{}, err
	}
	return s.mutate(ctx, id, func(t *model.Task, now time.Time) {
		if t.DueDate != d.DueDate {
			t.Notified = false
		}
		t.Title = d.Title
		t.Subject = d.Subject
		t.DueDate = d.DueDate
		applyStatus(t, d.Status, now)
	})
}

func (s *Store) SetStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	if !status.IsValid() {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	return s.mutate(ctx, id, func(t *model.Task, now time.Time) {
		applyStatus(t, status, now)
	})
}

// MarkNotifiedIf records that the reminder for task id has fired, but only
// while the task is still open, unnotified and due on due. It reports
// whether the marker was set.
func (s *Store) MarkNotifiedIf(ctx context.Context, id string, due model.Date) (model.Task, bool, error) {
	marked := false
	task, err := s.mutate(ctx, id, func(t *model.Task, _ time.Time) {
		if t.Notified || t.IsCompleted() || t.DueDate != due {
			return
		}
		t.Notified = true
		marked = true
	})
	return task, marked, err
}

func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := make([]model.Task, 0, len(s.items)-1)
	next = append(next, cloneAll(s.items[:idx])...)
	next = append(next, cloneAll(s.items[idx+1:])...)
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Info("task removed", zap.String("task_id", id))
	return nil
}

// ReplaceAll swaps the whole collection, as import and clear-all do.
func (s *Store) ReplaceAll(ctx context.Context, items []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := cloneAll(items)
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Info("tasks replaced", zap.Int("count", len(next)))
	return nil
}

// mutate reads the stored collection, applies fn to task id and writes the
// whole collection back.
func (s *Store) mutate(ctx context.Context, id string, fn func(*model.Task, time.Time)) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return model.Task{}, err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := cloneAll(s.items)
	fn(&next[idx], s.now())
	if err := s.commit(ctx, next); err != nil {
		return model.Task{}, err
	}
	return next[idx].Clone(), nil
}

// commit persists next and only then makes it the visible state.
func (s *Store) commit(ctx context.Context, next []model.Task) error {
	blob, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.kv.Save(ctx, s.key, blob); err != nil {
		s.log.Error("save tasks failed", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("save tasks: %w", err)
	}
	s.items = next
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// applyStatus keeps completedAt present exactly while the task is Completed.
func applyStatus(t *model.Task, status model.Status, now time.Time) {
	t.Status = status
	if status == model.StatusCompleted {
		if t.CompletedAt == nil {
			completed := now
			t.CompletedAt = &completed
		}
		return
	}
	t.CompletedAt = nil
}

func cloneAll(items []model.Task) []model.Task {
	out := make([]model.Task, len(items))
	for i, t := range items {
		out[i] = t.Clone()
	}
	return out
}
