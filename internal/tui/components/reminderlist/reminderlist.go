package reminderlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DarkZangetsu/medcare/internal/models"
)

type AddReminderMsg struct{}

type ToggleReminderMsg struct {
	ID string
}

type DeleteReminderMsg struct {
	ID    string
	Title string
}

type Item struct {
	Reminder models.Reminder
}

func (i Item) Title() string {
	if !i.Reminder.IsActive {
		return "⏸ " + i.Reminder.Title
	}
	return i.Reminder.Title
}

func (i Item) Description() string {
	return fmt.Sprintf("%s | %s | %s", i.Reminder.Type.Label(), i.Reminder.Time, i.Reminder.FormatFrequency())
}

func (i Item) FilterValue() string { return i.Reminder.Title }

type KeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "enable/disable"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(reminders []models.Reminder, width, height int) Model {
	l := list.New(items(reminders), list.NewDefaultDelegate(), width, height)
	l.Title = "Reminders"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func items(reminders []models.Reminder) []list.Item {
	out := make([]list.Item, len(reminders))
	for i, r := range reminders {
		out[i] = Item{Reminder: r}
	}
	return out
}

func (m *Model) SetReminders(reminders []models.Reminder) {
	m.list.SetItems(items(reminders))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddReminderMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ToggleReminderMsg{ID: i.Reminder.ID} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteReminderMsg{ID: i.Reminder.ID, Title: i.Reminder.Title} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No reminders yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
