package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"tododesk/internal/scheduler"
	"tododesk/internal/store"
)

const reminderLogCap = 20

func waitForTasksCmd(sub *store.Subscription) tea.Cmd {
	return func() tea.Msg {
		tasks, ok := <-sub.C()
		if !ok {
			return nil
		}
		return TasksUpdatedMsg{Tasks: tasks}
	}
}

func waitForReminderCmd(events <-chan scheduler.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func (m Model) handleReminderDue(msg ReminderDueMsg) (tea.Model, tea.Cmd) {
	m.ReminderLog = append(m.ReminderLog, msg.Event)
	if len(m.ReminderLog) > reminderLogCap {
		m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-reminderLogCap:]
	}
	m.Status = StatusBar{Text: fmt.Sprintf("reminder: %s (task #%d)", msg.Event.Title, msg.Event.TaskID)}

	if m.reminder != nil {
		if err := m.reminder.Deliver(msg.Event.TaskID, msg.Event.Title); err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("reminder delivery failed: %v", err), IsError: true}
		}
	}
	if m.service != nil {
		return m, waitForReminderCmd(m.service.Reminders())
	}
	return m, nil
}

// ReminderFor reports the most recent reminder seen for a task id.
func (m Model) ReminderFor(id int64) (scheduler.Event, bool) {
	for i := len(m.ReminderLog) - 1; i >= 0; i-- {
		if m.ReminderLog[i].TaskID == id {
			return m.ReminderLog[i], true
		}
	}
	return scheduler.Event{}, false
}
