// Package notify turns fired reminder events into user-visible
// notifications, behind a capability gate. A denied gate drops the
// reminder with a log line and no error: the due date has passed, so
// there is nothing to retry.
package notify

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// PermissionGate answers whether this process may show user-visible
// notifications.
type PermissionGate interface {
	Allowed() bool
}

// StaticGate is a fixed grant/deny decision, usually bound from config.
type StaticGate bool

func (g StaticGate) Allowed() bool { return bool(g) }

type Handler struct {
	gate     PermissionGate
	notifier Notifier
	logger   *log.Logger

	mu        sync.Mutex
	delivered map[int64]Notification
}

func NewHandler(gate PermissionGate, notifier Notifier, logger *log.Logger) *Handler {
	return &Handler{
		gate:      gate,
		notifier:  notifier,
		logger:    logger,
		delivered: make(map[int64]Notification),
	}
}

// Deliver builds and sends the reminder notification for a task. The
// per-task slot in the delivered set is replaced, never stacked.
func (h *Handler) Deliver(taskID int64, title string) error {
	if !h.gate.Allowed() {
		h.logger.Warn("notification permission denied, reminder dropped", "task_id", taskID)
		return nil
	}

	n := Notification{
		TaskID: taskID,
		Title:  "Task due",
		Body:   title,
	}

	h.mu.Lock()
	h.delivered[taskID] = n
	h.mu.Unlock()

	if err := h.notifier.Send(n); err != nil {
		h.logger.Error("notification send failed", "task_id", taskID, "err", err)
		return fmt.Errorf("send notification for task %d: %w", taskID, err)
	}
	return nil
}

// Delivered returns the latest notification shown for a task, if any.
func (h *Handler) Delivered(taskID int64) (Notification, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.delivered[taskID]
	return n, ok
}

// Dismiss clears the per-task notification slot (e.g. when the user
// opens the task list from the notification).
func (h *Handler) Dismiss(taskID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.delivered, taskID)
}
