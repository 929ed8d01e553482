// Package service is the contract between the UI and the core: every
// mutation goes through here so the store and the reminder scheduler
// stay consistent. The rule it maintains: a task that is incomplete
// with a future due date has exactly one live timer under its id, and
// no other task has any.
package service

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"tododesk/internal/model"
	"tododesk/internal/query"
	"tododesk/internal/scheduler"
	"tododesk/internal/store"
)

type Service struct {
	store  *store.Store
	engine *scheduler.Engine
	logger *log.Logger
}

func New(store *store.Store, engine *scheduler.Engine, logger *log.Logger) *Service {
	return &Service{store: store, engine: engine, logger: logger}
}

func (s *Service) Store() *store.Store {
	return s.store
}

// Reminders exposes the scheduler's delivery channel.
func (s *Service) Reminders() <-chan scheduler.Event {
	return s.engine.C()
}

// CreateTask persists a new task and arms its reminder when the due
// date qualifies.
func (s *Service) CreateTask(ctx context.Context, title, description string, dueDate *time.Time) (model.Task, error) {
	task, err := s.store.Create(ctx, title, description, dueDate)
	if err != nil {
		return model.Task{}, err
	}
	s.syncReminder(task)
	return task, nil
}

// UpdateTask replaces title, description and due date of an existing
// task. The pending timer is always revoked first and re-armed only if
// the new state qualifies, so a removed or past due date leaves no
// orphan timer behind.
func (s *Service) UpdateTask(ctx context.Context, existing model.Task, title, description string, dueDate *time.Time) (model.Task, error) {
	updated := existing
	updated.Title = title
	updated.Description = description
	updated.DueDate = dueDate

	s.engine.Cancel(existing.ID)
	if err := s.store.Update(ctx, updated); err != nil {
		// Restore the timer for the unchanged record.
		s.syncReminder(existing)
		return model.Task{}, err
	}
	s.syncReminder(updated)
	return updated, nil
}

// ToggleCompleted flips the completion flag. Completing a task revokes
// its timer; un-completing re-arms it when the due date is still in
// the future.
func (s *Service) ToggleCompleted(ctx context.Context, task model.Task, completed bool) (model.Task, error) {
	updated := task
	updated.Completed = completed

	if err := s.store.Update(ctx, updated); err != nil {
		return model.Task{}, err
	}
	if completed {
		s.engine.Cancel(task.ID)
	} else {
		s.syncReminder(updated)
	}
	return updated, nil
}

func (s *Service) DeleteTask(ctx context.Context, task model.Task) error {
	if err := s.store.Delete(ctx, task.ID); err != nil {
		return err
	}
	s.engine.Cancel(task.ID)
	return nil
}

func (s *Service) SortAndFilter(ctx context.Context) (query.Spec, error) {
	return s.store.Prefs(ctx)
}

func (s *Service) SetSortAndFilter(ctx context.Context, spec query.Spec) error {
	return s.store.SetPrefs(ctx, spec)
}

// RearmReminders schedules a timer for every persisted task that
// qualifies. Called once at startup so due dates survive restarts.
func (s *Service) RearmReminders(ctx context.Context) (int, error) {
	tasks, err := s.store.List(ctx, query.Default())
	if err != nil {
		return 0, err
	}
	now := time.Now()
	armed := 0
	for _, task := range tasks {
		if !task.NeedsReminder(now) {
			continue
		}
		if err := s.engine.Schedule(task.ID, task.Title, *task.DueDate); err != nil {
			s.logger.Error("re-arm failed", "task_id", task.ID, "err", err)
			continue
		}
		armed++
	}
	if armed > 0 {
		s.logger.Info("re-armed reminders from persisted state", "count", armed)
	}
	return armed, nil
}

// syncReminder arms or revokes the timer so it matches the task state.
func (s *Service) syncReminder(task model.Task) {
	if task.NeedsReminder(time.Now()) {
		if err := s.engine.Schedule(task.ID, task.Title, *task.DueDate); err != nil {
			s.logger.Error("reminder scheduling failed", "task_id", task.ID, "err", err)
		}
		return
	}
	s.engine.Cancel(task.ID)
}
