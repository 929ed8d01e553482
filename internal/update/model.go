package update

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"

	"tododesk/internal/model"
	"tododesk/internal/notify"
	"tododesk/internal/query"
	"tododesk/internal/scheduler"
	"tododesk/internal/service"
	"tododesk/internal/store"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Up      string
	Down    string
	Add     string
	Toggle  string
	Delete  string
	Sort    string
	Order   string
	Filter  string
	Palette string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	Tasks       []model.Task
	Cursor      int
	Spec        query.Spec
	AddMode     bool
	Palette     CommandPaletteState
	HelpVisible bool
	ReminderLog []scheduler.Event
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	service  *service.Service
	sub      *store.Subscription
	reminder *notify.Handler

	quickAddInput textinput.Model
	commandInput  textinput.Model
	helpModel     help.Model
}

type TasksUpdatedMsg struct {
	Tasks []model.Task
}

type ReminderDueMsg struct {
	Event scheduler.Event
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

func NewModel() Model {
	m := Model{
		Spec: query.Default(),
		Keys: GlobalKeyMap{
			Up:      "k",
			Down:    "j",
			Add:     "a",
			Toggle:  " ",
			Delete:  "d",
			Sort:    "s",
			Order:   "o",
			Filter:  "f",
			Palette: "/",
			Help:    "?",
			Quit:    "q",
		},
	}
	m.quickAddInput = textinput.New()
	m.quickAddInput.Placeholder = "task title"
	m.quickAddInput.CharLimit = 200
	m.commandInput = textinput.New()
	m.commandInput.Placeholder = "add buy milk | done 3 | sort title asc"
	m.commandInput.CharLimit = 200
	m.helpModel = help.New()
	return m
}

func NewModelWithRuntime(svc *service.Service, sub *store.Subscription, reminder *notify.Handler, spec query.Spec) Model {
	m := NewModel()
	m.service = svc
	m.sub = sub
	m.reminder = reminder
	m.Spec = spec.Normalize()
	return m
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Add     key.Binding
	Toggle  key.Binding
	Delete  key.Binding
	Sort    key.Binding
	Order   key.Binding
	Filter  key.Binding
	Palette key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Palette, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Toggle, k.Delete},
		{k.Sort, k.Order, k.Filter, k.Palette, k.Help, k.Quit},
	}
}

func (m Model) keyBindings() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys(m.Keys.Up, "up"), key.WithHelp(m.Keys.Up, "move up")),
		Down:    key.NewBinding(key.WithKeys(m.Keys.Down, "down"), key.WithHelp(m.Keys.Down, "move down")),
		Add:     key.NewBinding(key.WithKeys(m.Keys.Add), key.WithHelp(m.Keys.Add, "add task")),
		Toggle:  key.NewBinding(key.WithKeys(m.Keys.Toggle), key.WithHelp("space", "toggle done")),
		Delete:  key.NewBinding(key.WithKeys(m.Keys.Delete), key.WithHelp(m.Keys.Delete, "delete task")),
		Sort:    key.NewBinding(key.WithKeys(m.Keys.Sort), key.WithHelp(m.Keys.Sort, "cycle sort key")),
		Order:   key.NewBinding(key.WithKeys(m.Keys.Order), key.WithHelp(m.Keys.Order, "flip sort order")),
		Filter:  key.NewBinding(key.WithKeys(m.Keys.Filter), key.WithHelp(m.Keys.Filter, "cycle filter")),
		Palette: key.NewBinding(key.WithKeys(m.Keys.Palette), key.WithHelp(m.Keys.Palette, "command palette")),
		Help:    key.NewBinding(key.WithKeys(m.Keys.Help), key.WithHelp(m.Keys.Help, "toggle help")),
		Quit:    key.NewBinding(key.WithKeys(m.Keys.Quit, "ctrl+c"), key.WithHelp(m.Keys.Quit, "quit")),
	}
}

func (m Model) selectedTask() (model.Task, bool) {
	if len(m.Tasks) == 0 || m.Cursor < 0 || m.Cursor >= len(m.Tasks) {
		return model.Task{}, false
	}
	return m.Tasks[m.Cursor], true
}

func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Tasks) {
		m.Cursor = len(m.Tasks) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}
