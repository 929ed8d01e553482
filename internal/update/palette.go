package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tododesk/internal/commands"
	"tododesk/internal/model"
	"tododesk/internal/query"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if m.service == nil {
		m.Status = StatusBar{Text: "no backing service", IsError: true}
		return m, nil
	}

	ctx := context.Background()
	var specChange *query.Spec

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, err := m.service.CreateTask(ctx, a.Title, "", nil)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added task #%d: %s", task.ID, task.Title)}, nil
		},
		Done: func(a commands.TaskRefArgs) (commands.Result, error) {
			return m.setCompleted(ctx, a.ID, true)
		},
		Undone: func(a commands.TaskRefArgs) (commands.Result, error) {
			return m.setCompleted(ctx, a.ID, false)
		},
		Remove: func(a commands.TaskRefArgs) (commands.Result, error) {
			task, err := m.service.Store().Get(ctx, a.ID)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.service.DeleteTask(ctx, task); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("deleted task #%d", a.ID)}, nil
		},
		Due: func(a commands.DueArgs) (commands.Result, error) {
			task, err := m.service.Store().Get(ctx, a.ID)
			if err != nil {
				return commands.Result{}, err
			}
			due, err := parseWhen(a.When)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			if _, err := m.service.UpdateTask(ctx, task, task.Title, task.Description, due); err != nil {
				return commands.Result{}, err
			}
			if due == nil {
				return commands.Result{Message: fmt.Sprintf("cleared due date of task #%d", a.ID)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("task #%d due %s", a.ID, formatDue(*due))}, nil
		},
		Sort: func(a commands.SortArgs) (commands.Result, error) {
			key, ok := sortKeyFromArg(a.Key)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown sort key: %s", a.Key)}
			}
			spec := m.Spec
			spec.SortBy = key
			spec.Ascending = a.Ascending
			specChange = &spec
			return commands.Result{Message: "sorting by " + describeSpec(spec)}, nil
		},
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			filter, ok := filterFromArg(a.Value)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown filter: %s", a.Value)}
			}
			spec := m.Spec
			spec.Filter = filter
			specChange = &spec
			return commands.Result{Message: "showing " + string(filter)}, nil
		},
		Show: func(a commands.TaskRefArgs) (commands.Result, error) {
			for i, task := range m.Tasks {
				if task.ID == a.ID {
					m.Cursor = i
					return commands.Result{Message: fmt.Sprintf("showing task #%d", a.ID)}, nil
				}
			}
			return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("task #%d is not in the current view", a.ID)}
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	if specChange != nil {
		next, teaCmd := m.applySpec(*specChange)
		nm := next.(Model)
		if !nm.Status.IsError {
			nm.Status = StatusBar{Text: res.Message}
		}
		return nm, teaCmd
	}
	m.Status = StatusBar{Text: res.Message}
	return m, nil
}

func sortKeyFromArg(arg string) (query.SortKey, bool) {
	switch arg {
	case "title":
		return query.SortByTitle, true
	case "created", "createdat":
		return query.SortByCreatedAt, true
	case "completed":
		return query.SortByCompleted, true
	default:
		return "", false
	}
}

func filterFromArg(arg string) (query.Filter, bool) {
	switch arg {
	case "all":
		return query.FilterAll, true
	case "done", "completed":
		return query.FilterCompleted, true
	case "pending", "open":
		return query.FilterPending, true
	default:
		return "", false
	}
}

func (m Model) setCompleted(ctx context.Context, id int64, completed bool) (commands.Result, error) {
	task, err := m.service.Store().Get(ctx, id)
	if err != nil {
		return commands.Result{}, err
	}
	var updated model.Task
	if updated, err = m.service.ToggleCompleted(ctx, task, completed); err != nil {
		return commands.Result{}, err
	}
	if updated.Completed {
		return commands.Result{Message: fmt.Sprintf("task #%d completed", id)}, nil
	}
	return commands.Result{Message: fmt.Sprintf("task #%d reopened", id)}, nil
}
