package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"tododesk/internal/model"
	"tododesk/internal/query"
	"tododesk/internal/scheduler"
	"tododesk/internal/storage"
	"tododesk/internal/store"
)

func setupService(t *testing.T) (*Service, *scheduler.Engine) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "service-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	logger := log.New(io.Discard)
	engine := scheduler.NewEngine(16, scheduler.WithLogger(logger))
	engine.Start()
	t.Cleanup(engine.Stop)

	return New(store.New(repo, logger), engine, logger), engine
}

func TestCreateWithFutureDueDateFiresOnce(t *testing.T) {
	svc, engine := setupService(t)
	ctx := context.Background()

	due := time.Now().Add(80 * time.Millisecond)
	task, err := svc.CreateTask(ctx, "Submit expenses", "", &due)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got := engine.PendingCount(); got != 1 {
		t.Fatalf("expected one pending timer, got %d", got)
	}
	at, ok := engine.PendingAt(task.ID)
	if !ok || !at.Equal(due) {
		t.Fatalf("pending at %v ok=%v, want %v", at, ok, due)
	}

	ev := waitEvent(t, engine.C())
	if ev.TaskID != task.ID || ev.Title != "Submit expenses" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	// The one-shot has been consumed; cancelling now is a no-op.
	engine.Cancel(task.ID)
	if got := engine.PendingCount(); got != 0 {
		t.Fatalf("expected empty registry, got %d", got)
	}
}

func TestCreateWithoutDueDateNeverArms(t *testing.T) {
	svc, engine := setupService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "Someday item", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := engine.PendingCount(); got != 0 {
		t.Fatalf("task without due date armed a timer: %d", got)
	}

	task, err = svc.ToggleCompleted(ctx, task, true)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err = svc.ToggleCompleted(ctx, task, false); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if got := engine.PendingCount(); got != 0 {
		t.Fatalf("toggling without due date armed a timer: %d", got)
	}
}

func TestCreateWithPastDueDateArmsNothing(t *testing.T) {
	svc, engine := setupService(t)

	past := time.Now().Add(-5 * time.Second)
	if _, err := svc.CreateTask(context.Background(), "Missed it", "", &past); err != nil {
		t.Fatalf("create with past due date must not error: %v", err)
	}
	if got := engine.PendingCount(); got != 0 {
		t.Fatalf("past due date armed a timer: %d", got)
	}
}

func TestCompleteCancelsReminder(t *testing.T) {
	svc, engine := setupService(t)
	ctx := context.Background()

	due := time.Now().Add(60 * time.Millisecond)
	task, err := svc.CreateTask(ctx, "Water plants", "", &due)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ToggleCompleted(ctx, task, true); err != nil {
		t.Fatalf("complete: %v", err)
	}

	select {
	case ev := <-engine.C():
		t.Fatalf("completed task fired a reminder: %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestUpdateReplacesReminder(t *testing.T) {
	svc, engine := setupService(t)
	ctx := context.Background()

	firstDue := time.Now().Add(time.Hour)
	task, err := svc.CreateTask(ctx, "Call dentist", "", &firstDue)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newDue := time.Now().Add(2 * time.Hour)
	task, err = svc.UpdateTask(ctx, task, "Call dentist office", "ask about friday", &newDue)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if got := engine.PendingCount(); got != 1 {
		t.Fatalf("expected one replaced timer, got %d", got)
	}
	at, ok := engine.PendingAt(task.ID)
	if !ok || !at.Equal(newDue) {
		t.Fatalf("timer should fire at the new due date: %v ok=%v", at, ok)
	}

	got, err := svc.Store().Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Call dentist office" || got.Description != "ask about friday" {
		t.Fatalf("update not persisted: %#v", got)
	}
}

func TestUpdateRemovingDueDateCancels(t *testing.T) {
	svc, engine := setupService(t)
	ctx := context.Background()

	due := time.Now().Add(time.Hour)
	task, err := svc.CreateTask(ctx, "Renew passport", "", &due)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateTask(ctx, task, task.Title, task.Description, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := engine.PendingCount(); got != 0 {
		t.Fatalf("removed due date left a timer: %d", got)
	}
}

func TestDeleteCancelsReminder(t *testing.T) {
	svc, engine := setupService(t)
	ctx := context.Background()

	due := time.Now().Add(time.Hour)
	task, err := svc.CreateTask(ctx, "Book flights", "", &due)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteTask(ctx, task); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := engine.PendingCount(); got != 0 {
		t.Fatalf("deleted task left a timer: %d", got)
	}
	if _, err := svc.Store().Get(ctx, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateMissingTaskSurfacesNotFound(t *testing.T) {
	svc, _ := setupService(t)
	ghost := model.Task{ID: 999, Title: "ghost", CreatedAt: time.Now()}
	if _, err := svc.UpdateTask(context.Background(), ghost, "still a ghost", "", nil); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRearmRemindersFromPersistedState(t *testing.T) {
	svc, engine := setupService(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	qualifying, err := svc.Store().Create(ctx, "qualifying", "", &future)
	if err != nil {
		t.Fatalf("create qualifying: %v", err)
	}
	if _, err := svc.Store().Create(ctx, "overdue", "", &past); err != nil {
		t.Fatalf("create overdue: %v", err)
	}
	done, err := svc.Store().Create(ctx, "done", "", &future)
	if err != nil {
		t.Fatalf("create done: %v", err)
	}
	done.Completed = true
	if err := svc.Store().Update(ctx, done); err != nil {
		t.Fatalf("complete done: %v", err)
	}
	if _, err := svc.Store().Create(ctx, "dateless", "", nil); err != nil {
		t.Fatalf("create dateless: %v", err)
	}

	armed, err := svc.RearmReminders(ctx)
	if err != nil {
		t.Fatalf("re-arm: %v", err)
	}
	if armed != 1 {
		t.Fatalf("expected exactly 1 re-armed reminder, got %d", armed)
	}
	if _, ok := engine.PendingAt(qualifying.ID); !ok {
		t.Fatal("qualifying task has no timer after re-arm")
	}
}

func TestSortAndFilterRoundTrip(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	want := query.Spec{SortBy: query.SortByCompleted, Ascending: true, Filter: query.FilterAll}
	if err := svc.SetSortAndFilter(ctx, want); err != nil {
		t.Fatalf("set prefs: %v", err)
	}
	got, err := svc.SortAndFilter(ctx)
	if err != nil {
		t.Fatalf("get prefs: %v", err)
	}
	if got != want {
		t.Fatalf("prefs mismatch: got %+v want %+v", got, want)
	}
}

func waitEvent(t *testing.T, ch <-chan scheduler.Event) scheduler.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for reminder event")
		return scheduler.Event{}
	}
}
