package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyTitle       = errors.New("model: task title is required")
	ErrMissingCreatedAt = errors.New("model: task created_at is required")
)

// Task is a single todo record. ID zero means the task has not been
// persisted yet; the store assigns the real identifier on insert.
// CreatedAt is immutable after insert. A nil DueDate means the task
// never gets a reminder.
type Task struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	DueDate     *time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.CreatedAt.IsZero() {
		return ErrMissingCreatedAt
	}
	return nil
}

// NeedsReminder reports whether the task qualifies for a live reminder
// timer: incomplete, with a due date still in the future.
func (t Task) NeedsReminder(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.After(now)
}
