package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/tui/components/reminderlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case loadedMsg:
		m.offline = msg.offline
		m.err = msg.err
		m.refresh()
		return m, nil

	case actionDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
		} else {
			m.status = ""
			logger.Warn("TUI action failed", "error", msg.err)
		}
		m.refresh()
		return m, nil

	case reminderlist.AddReminderMsg:
		m.reminderForm = &ReminderFormModel{
			Type:      "medication",
			Frequency: "once",
			Date:      m.now().Format(constants.DateFormat),
		}
		m.form = newReminderForm(m.reminderForm)
		m.state = StateAddReminder
		return m, m.form.Init()

	case reminderlist.ToggleReminderMsg:
		return m, m.toggleCmd(msg.ID)

	case reminderlist.DeleteReminderMsg:
		m.toDelete = msg
		m.state = StateConfirmDelete
		return m, nil
	}

	switch m.state {
	case StateAddReminder, StateAddNote:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			return m, m.loadCmd()
		case m.state == StateJournal && key.Matches(msg, m.keys.Add):
			m.noteForm = &NoteFormModel{}
			m.form = newNoteForm(m.noteForm)
			m.state = StateAddNote
			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case StateReminders:
		m.reminderList, cmd = m.reminderList.Update(msg)
	case StateJournal:
		m.journalTable, cmd = m.journalTable.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return m.closeForm(), nil
	}

	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		var action tea.Cmd
		if m.state == StateAddReminder {
			action = m.createCmd(*m.reminderForm)
		} else {
			action = m.addNoteCmd(m.noteForm.Content)
		}
		return m.closeForm(), action
	case huh.StateAborted:
		return m.closeForm(), nil
	}
	return m, cmd
}

func (m Model) closeForm() Model {
	if m.state == StateAddNote {
		m.state = StateJournal
	} else {
		m.state = StateReminders
	}
	m.form = nil
	m.reminderForm = nil
	m.noteForm = nil
	return m
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "y", "Y":
		m.state = StateReminders
		return m, m.deleteCmd(m.toDelete.ID)
	case "n", "N", "esc", "q":
		m.state = StateReminders
	}
	return m, nil
}

// refresh copies the in-memory reminder set and journal into the components.
func (m *Model) refresh() {
	all := m.reminders.Reminders()
	next, err := m.reminders.Upcoming()
	if err != nil && m.err == nil {
		m.err = err
	}
	m.dashboard.SetReminders(next, all, m.offline, m.now())
	m.reminderList.SetReminders(all)

	entries := m.journal.Entries()
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{e.Date, string(e.Type), e.Summary()}
	}
	m.journalTable.SetRows(rows)
}

func (m *Model) resize() {
	// tabs, status line and help take five rows
	h := m.height - 7
	if h < 3 {
		h = 3
	}
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	m.dashboard.SetSize(w, h)
	m.reminderList.SetSize(w, h)
	m.journalTable.SetWidth(w)
	m.journalTable.SetHeight(h)
}
