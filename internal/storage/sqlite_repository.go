package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tododesk/internal/model"
	"tododesk/internal/query"
)

// Timestamps are stored as integer milliseconds since epoch so numeric
// ORDER BY matches wall-clock order exactly.

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, completed, created_at, due_date)
		VALUES (?, ?, ?, ?, ?)`,
		in.Title, in.Description, boolInt(in.Completed), millis(in.CreatedAt), nullMillis(in.DueDate),
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("task insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id int64) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, completed, created_at, due_date
		FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in model.Task) error {
	// created_at is deliberately absent from the SET list.
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, completed = ?, due_date = ?
		WHERE id = ?`,
		in.Title, in.Description, boolInt(in.Completed), nullMillis(in.DueDate), in.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, spec query.Spec) ([]model.Task, error) {
	q := `SELECT id, title, description, completed, created_at, due_date FROM tasks`
	where, args := spec.Where()
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY " + spec.OrderBy()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetListPrefs(ctx context.Context) (query.Spec, error) {
	row := r.db.QueryRowContext(ctx, `SELECT sort_by, ascending, filter FROM list_prefs WHERE id = 1`)
	var sortBy, filter string
	var ascending int
	if err := row.Scan(&sortBy, &ascending, &filter); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return query.Default(), nil
		}
		return query.Spec{}, fmt.Errorf("read list prefs: %w", err)
	}
	spec := query.Spec{
		SortBy:    query.SortKey(sortBy),
		Ascending: ascending == 1,
		Filter:    query.Filter(filter),
	}
	return spec.Normalize(), nil
}

func (r *SQLiteRepository) SetListPrefs(ctx context.Context, spec query.Spec) error {
	spec = spec.Normalize()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO list_prefs (id, sort_by, ascending, filter)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET sort_by = excluded.sort_by, ascending = excluded.ascending, filter = excluded.filter`,
		string(spec.SortBy), boolInt(spec.Ascending), string(spec.Filter),
	)
	if err != nil {
		return fmt.Errorf("write list prefs: %w", err)
	}
	return nil
}

func millis(v time.Time) int64 {
	return v.UnixMilli()
}

func nullMillis(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UnixMilli()
}

func timeFromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var completed int
	var created int64
	var due sql.NullInt64
	if err := s.Scan(&out.ID, &out.Title, &out.Description, &completed, &created, &due); err != nil {
		return model.Task{}, err
	}
	out.Completed = completed == 1
	out.CreatedAt = timeFromMillis(created)
	if due.Valid {
		at := timeFromMillis(due.Int64)
		out.DueDate = &at
	}
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
