// Package tui is the interactive dashboard: upcoming reminders, the reminder
// list and the health journal.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/DarkZangetsu/medcare/internal/journal"
	"github.com/DarkZangetsu/medcare/internal/reminders"
	"github.com/DarkZangetsu/medcare/internal/tui/components/reminderlist"
	"github.com/DarkZangetsu/medcare/internal/tui/components/upcoming"
)

type SessionState int

const (
	StateDashboard SessionState = iota
	StateReminders
	StateJournal
	StateAddReminder
	StateAddNote
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 3

var tabTitles = []string{"Accueil", "Rappels", "Journal"}

type ReminderFormModel struct {
	Title       string
	Type        string
	Date        string
	Time        string
	Frequency   string
	EndDate     string
	Description string
}

type NoteFormModel struct {
	Content string
}

type Model struct {
	ctx       context.Context
	reminders *reminders.Manager
	journal   *journal.Journal
	now       func() time.Time

	state        SessionState
	keys         KeyMap
	help         help.Model
	dashboard    upcoming.Model
	reminderList reminderlist.Model
	journalTable table.Model

	form         *huh.Form
	reminderForm *ReminderFormModel
	noteForm     *NoteFormModel
	toDelete     reminderlist.DeleteReminderMsg

	offline  bool
	status   string
	err      error
	quitting bool
	width    int
	height   int
}

func NewModel(ctx context.Context, rm *reminders.Manager, j *journal.Journal) Model {
	jt := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 10},
			{Title: "Type", Width: 12},
			{Title: "Entrée", Width: 50},
		}),
		table.WithFocused(true),
	)

	return Model{
		ctx:          ctx,
		reminders:    rm,
		journal:      j,
		now:          time.Now,
		state:        StateDashboard,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		dashboard:    upcoming.New(0, 0),
		reminderList: reminderlist.New(nil, 0, 0),
		journalTable: jt,
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateReminders:
		keys = append(keys, m.keys.Add, m.keys.Toggle, m.keys.Delete)
	case StateJournal:
		keys = append(keys, m.keys.Add)
	}
	return append(keys, m.keys.Refresh)
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateReminders:
		actions = []key.Binding{m.keys.Add, m.keys.Toggle, m.keys.Delete}
	case StateJournal:
		actions = []key.Binding{m.keys.Add}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

// Run starts the dashboard in the alternate screen and blocks until it exits.
func Run(ctx context.Context, rm *reminders.Manager, j *journal.Journal) error {
	p := tea.NewProgram(NewModel(ctx, rm, j), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
