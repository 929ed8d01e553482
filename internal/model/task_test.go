package model

import (
	"errors"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        1,
		Title:     "Pay rent",
		CreatedAt: now,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateEmptyTitle(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{Title: "   ", CreatedAt: now}
	if err := task.Validate(); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got: %v", err)
	}
}

func TestTaskValidateMissingCreatedAt(t *testing.T) {
	task := Task{Title: "No timestamp"}
	if err := task.Validate(); !errors.Is(err, ErrMissingCreatedAt) {
		t.Fatalf("expected ErrMissingCreatedAt, got: %v", err)
	}
}

func TestNeedsReminder(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name string
		task Task
		want bool
	}{
		{"future due incomplete", Task{Title: "a", CreatedAt: now, DueDate: &future}, true},
		{"future due completed", Task{Title: "b", CreatedAt: now, DueDate: &future, Completed: true}, false},
		{"past due", Task{Title: "c", CreatedAt: now, DueDate: &past}, false},
		{"no due date", Task{Title: "d", CreatedAt: now}, false},
	}
	for _, tc := range cases {
		if got := tc.task.NeedsReminder(now); got != tc.want {
			t.Fatalf("%s: NeedsReminder = %v, want %v", tc.name, got, tc.want)
		}
	}
}
