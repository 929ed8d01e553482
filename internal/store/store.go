// Package store owns the task collection: serialized mutations over the
// repository, id assignment, and live list subscriptions that re-emit a
// fresh filtered/sorted snapshot after every committing mutation.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"tododesk/internal/model"
	"tododesk/internal/query"
	"tododesk/internal/storage"
)

type Store struct {
	repo   storage.Repository
	logger *log.Logger
	clock  func() time.Time

	mu   sync.Mutex
	subs map[uuid.UUID]*Subscription
}

type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func New(repo storage.Repository, logger *log.Logger, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		logger: logger,
		clock:  time.Now,
		subs:   make(map[uuid.UUID]*Subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new task. CreatedAt is stamped here, truncated to
// millisecond precision so it round-trips through storage exactly.
func (s *Store) Create(ctx context.Context, title, description string, dueDate *time.Time) (model.Task, error) {
	task := model.Task{
		Title:       title,
		Description: description,
		CreatedAt:   s.clock().UTC().Truncate(time.Millisecond),
		DueDate:     dueDate,
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return model.Task{}, err
	}
	task.ID = id
	s.broadcast(ctx)
	return task, nil
}

// Update replaces the stored record matching task.ID. The stored
// created_at is never altered regardless of what the argument carries.
func (s *Store) Update(ctx context.Context, task model.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return err
	}
	s.broadcast(ctx)
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.broadcast(ctx)
	return nil
}

func (s *Store) Get(ctx context.Context, id int64) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.GetTask(ctx, id)
}

// List is the one-shot snapshot form of a query.
func (s *Store) List(ctx context.Context, spec query.Spec) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.ListTasks(ctx, spec)
}

// Prefs returns the persisted sort/filter preference.
func (s *Store) Prefs(ctx context.Context) (query.Spec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.GetListPrefs(ctx)
}

// SetPrefs persists the sort/filter preference.
func (s *Store) SetPrefs(ctx context.Context, spec query.Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.SetListPrefs(ctx, spec)
}

// Subscription is a live list query. C delivers the full snapshot for
// the query's spec after every mutation, in mutation order; only the
// freshest snapshot is retained when the consumer lags.
type Subscription struct {
	ID   uuid.UUID
	spec query.Spec
	ch   chan []model.Task
	done bool
}

func (sub *Subscription) C() <-chan []model.Task {
	return sub.ch
}

func (sub *Subscription) Spec() query.Spec {
	return sub.spec
}

// Subscribe registers a live query and immediately emits its current
// snapshot.
func (s *Store) Subscribe(ctx context.Context, spec query.Spec) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.ListTasks(ctx, spec)
	if err != nil {
		return nil, err
	}
	sub := &Subscription{
		ID:   uuid.New(),
		spec: spec,
		ch:   make(chan []model.Task, 1),
	}
	sub.push(snapshot)
	s.subs[sub.ID] = sub
	return sub, nil
}

// Unsubscribe revokes a live query. Idempotent.
func (s *Store) Unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return
	}
	sub.done = true
	close(sub.ch)
	delete(s.subs, id)
}

// broadcast re-evaluates every live query. Caller holds the store lock,
// which is also what serializes pushes against Unsubscribe's close.
func (s *Store) broadcast(ctx context.Context) {
	for _, sub := range s.subs {
		snapshot, err := s.repo.ListTasks(ctx, sub.spec)
		if err != nil {
			s.logger.Error("list subscription re-evaluation failed", "subscription", sub.ID, "err", err)
			continue
		}
		sub.push(snapshot)
	}
}

func (sub *Subscription) push(snapshot []model.Task) {
	if sub.done {
		return
	}
	for {
		select {
		case sub.ch <- snapshot:
			return
		default:
		}
		// Channel full: drop the stale snapshot and retry with the
		// fresh one.
		select {
		case <-sub.ch:
		default:
		}
	}
}
