package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tododesk/internal/query"
	"tododesk/internal/views"
)

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.sub != nil {
		cmds = append(cmds, waitForTasksCmd(m.sub))
	}
	if m.service != nil {
		cmds = append(cmds, waitForReminderCmd(m.service.Reminders()))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		if m.AddMode {
			return m.handleQuickAddKey(typed)
		}
		return m.handleGlobalKey(typed)

	case TasksUpdatedMsg:
		m.Tasks = typed.Tasks
		m.clampCursor()
		if m.sub != nil {
			return m, waitForTasksCmd(m.sub)
		}
		return m, nil

	case ReminderDueMsg:
		return m.handleReminderDue(typed)

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil

	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Up, "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case m.Keys.Down, "down":
		if m.Cursor < len(m.Tasks)-1 {
			m.Cursor++
		}
		return m, nil
	case m.Keys.Add:
		m.AddMode = true
		m.quickAddInput.SetValue("")
		m.quickAddInput.Focus()
		m.Status = StatusBar{Text: "quick add active"}
		return m, nil
	case m.Keys.Toggle:
		return m.toggleSelected()
	case m.Keys.Delete:
		return m.deleteSelected()
	case m.Keys.Sort:
		spec := m.Spec
		spec.SortBy = nextSortKey(spec.SortBy)
		return m.applySpec(spec)
	case m.Keys.Order:
		spec := m.Spec
		spec.Ascending = !spec.Ascending
		return m.applySpec(spec)
	case m.Keys.Filter:
		spec := m.Spec
		spec.Filter = nextFilter(spec.Filter)
		return m.applySpec(spec)
	case m.Keys.Palette:
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		m.helpModel.ShowAll = m.HelpVisible
		return m, nil
	}
	return m, nil
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.AddMode = false
		m.quickAddInput.Blur()
		m.Status = StatusBar{Text: "quick add cancelled"}
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.quickAddInput.Value())
		m.AddMode = false
		m.quickAddInput.Blur()
		m.quickAddInput.SetValue("")
		if m.service == nil || title == "" {
			m.Status = StatusBar{Text: "nothing to add"}
			return m, nil
		}
		task, err := m.service.CreateTask(context.Background(), title, "", nil)
		if err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: fmt.Sprintf("added task #%d", task.ID)}
		return m, nil
	}
	var cmd tea.Cmd
	m.quickAddInput, cmd = m.quickAddInput.Update(msg)
	return m, cmd
}

func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok || m.service == nil {
		return m, nil
	}
	updated, err := m.service.ToggleCompleted(context.Background(), task, !task.Completed)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if updated.Completed {
		m.Status = StatusBar{Text: fmt.Sprintf("task #%d completed", updated.ID)}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("task #%d reopened", updated.ID)}
	}
	return m, nil
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok || m.service == nil {
		return m, nil
	}
	if err := m.service.DeleteTask(context.Background(), task); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: fmt.Sprintf("deleted task #%d", task.ID)}
	return m, nil
}

// applySpec persists the new sort and filter choice and swaps the live
// subscription over to it.
func (m Model) applySpec(spec query.Spec) (tea.Model, tea.Cmd) {
	spec = spec.Normalize()
	m.Spec = spec
	if m.service == nil {
		return m, nil
	}
	ctx := context.Background()
	if err := m.service.SetSortAndFilter(ctx, spec); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	sub, err := m.service.Store().Subscribe(ctx, spec)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if m.sub != nil {
		m.service.Store().Unsubscribe(m.sub.ID)
	}
	m.sub = sub
	m.Status = StatusBar{Text: "view: " + describeSpec(spec)}
	return m, waitForTasksCmd(sub)
}

func nextSortKey(key query.SortKey) query.SortKey {
	switch key {
	case query.SortByCreatedAt:
		return query.SortByTitle
	case query.SortByTitle:
		return query.SortByCompleted
	default:
		return query.SortByCreatedAt
	}
}

func nextFilter(f query.Filter) query.Filter {
	switch f {
	case query.FilterAll:
		return query.FilterPending
	case query.FilterPending:
		return query.FilterCompleted
	default:
		return query.FilterAll
	}
}

func (m Model) View() string {
	status := m.Status.Text
	if m.Status.IsError {
		status = "error: " + m.Status.Text
	}

	rightPane := m.renderDetailPane()
	if m.HelpVisible {
		rightPane += "\n\n" + views.RenderHelpPanel(views.HelpPanelData{
			HelpView: m.helpModel.View(m.keyBindings()),
		})
	}

	notification := ""
	if len(m.ReminderLog) > 0 {
		last := m.ReminderLog[len(m.ReminderLog)-1]
		notification = fmt.Sprintf("reminder: %s (task #%d) at %s", last.Title, last.TaskID, last.FireAt.Local().Format("15:04:05"))
	}

	return views.RenderApp(views.AppData{
		Header:       "tododesk | " + describeSpec(m.Spec),
		LeftPane:     m.renderTaskPanel(),
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: notification,
		Footer: fmt.Sprintf("keys: %s add | space toggle | %s del | %s/%s/%s sort-order-filter | %s cmd | %s help | %s quit",
			m.Keys.Add, m.Keys.Delete, m.Keys.Sort, m.Keys.Order, m.Keys.Filter, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderTaskPanel() string {
	now := time.Now()
	data := views.TaskPanelData{
		SortLine: describeSpec(m.Spec),
		Empty:    "no tasks yet, press a to add one",
	}
	if m.AddMode {
		data.QuickAdd = "add: " + m.quickAddInput.View()
	}
	if sel, ok := m.selectedTask(); ok {
		data.SelectedID = sel.ID
	}
	for _, task := range m.Tasks {
		row := views.TaskRowData{
			ID:        task.ID,
			Title:     task.Title,
			Completed: task.Completed,
		}
		if task.DueDate != nil {
			row.Due = formatDue(*task.DueDate)
			row.Overdue = !task.Completed && task.DueDate.Before(now)
		}
		data.Rows = append(data.Rows, row)
	}
	panel := views.RenderTaskPanel(data)
	if m.Palette.Active {
		panel += "\n\n" + views.RenderCommandPalette(true, m.commandInput.View())
	}
	return panel
}

func (m Model) renderDetailPane() string {
	task, ok := m.selectedTask()
	if !ok {
		return views.RenderDetailPane(views.DetailPaneData{})
	}
	data := views.DetailPaneData{
		ID:          task.ID,
		Title:       task.Title,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt.Local().Format("2006-01-02 15:04"),
		Description: task.Description,
	}
	if task.DueDate != nil {
		data.Due = formatDue(*task.DueDate)
	}
	if m.reminder != nil {
		if n, ok := m.reminder.Delivered(task.ID); ok {
			data.ReminderLine = "reminder shown: " + n.Body
		}
	}
	return views.RenderDetailPane(data)
}

func describeSpec(spec query.Spec) string {
	dir := "desc"
	if spec.Ascending {
		dir = "asc"
	}
	return fmt.Sprintf("sort %s %s | filter %s", spec.SortBy, dir, spec.Filter)
}
