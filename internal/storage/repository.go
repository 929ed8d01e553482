package storage

import (
	"context"
	"errors"

	"tododesk/internal/model"
	"tododesk/internal/query"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is the durable task store. CreateTask assigns the id and
// returns it; UpdateTask never touches created_at. ListTasks executes
// the query spec's filter and ordering contract verbatim.
type Repository interface {
	CreateTask(ctx context.Context, in model.Task) (int64, error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) error
	DeleteTask(ctx context.Context, id int64) error
	ListTasks(ctx context.Context, spec query.Spec) ([]model.Task, error)

	// List preference: the sort/filter triple the UI last applied,
	// surviving restarts.
	GetListPrefs(ctx context.Context) (query.Spec, error)
	SetListPrefs(ctx context.Context, spec query.Spec) error
}
