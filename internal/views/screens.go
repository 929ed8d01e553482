package views

import (
	"fmt"
	"strings"
)

type TaskRowData struct {
	ID        int64
	Title     string
	Completed bool
	Due       string
	Overdue   bool
}

type TaskPanelData struct {
	Rows       []TaskRowData
	SelectedID int64
	SortLine   string
	QuickAdd   string
	Empty      string
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	b.WriteString(data.SortLine + "\n")
	if data.QuickAdd != "" {
		b.WriteString(data.QuickAdd + "\n")
	}
	if len(data.Rows) == 0 {
		b.WriteString(data.Empty)
		return strings.TrimSpace(b.String())
	}
	for _, row := range data.Rows {
		cursor := " "
		if row.ID == data.SelectedID {
			cursor = ">"
		}
		box := "[ ]"
		title := row.Title
		if row.Completed {
			box = "[x]"
			title = doneStyle.Render(title)
		}
		line := fmt.Sprintf("%s %s #%d %s", cursor, box, row.ID, title)
		if row.Due != "" {
			due := "due " + row.Due
			if row.Overdue {
				due = errorStyle.Render(due)
			} else {
				due = dueStyle.Render(due)
			}
			line += "  " + due
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}

type DetailPaneData struct {
	ID           int64
	Title        string
	Completed    bool
	CreatedAt    string
	Due          string
	Description  string
	ReminderLine string
}

func RenderDetailPane(data DetailPaneData) string {
	if data.ID == 0 {
		return "detail:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("detail:\n")
	b.WriteString(fmt.Sprintf("id: %d\n", data.ID))
	b.WriteString(fmt.Sprintf("title: %s\n", data.Title))
	state := "pending"
	if data.Completed {
		state = "completed"
	}
	b.WriteString(fmt.Sprintf("state: %s\n", state))
	b.WriteString(fmt.Sprintf("created: %s\n", data.CreatedAt))
	if data.Due != "" {
		b.WriteString(fmt.Sprintf("due: %s\n", data.Due))
	}
	if data.ReminderLine != "" {
		b.WriteString(data.ReminderLine + "\n")
	}
	if md := RenderMarkdown(data.Description); md != "" {
		b.WriteString("\n" + md)
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("\nnotification: [%s] %s", strings.ToUpper(level), body)
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString("help:\n")
	for _, binding := range data.Bindings {
		b.WriteString(binding + "\n")
	}
	if data.HelpView != "" {
		b.WriteString(data.HelpView)
	}
	return strings.TrimSpace(b.String())
}
