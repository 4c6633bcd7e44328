package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/models"
)

type loadedMsg struct {
	offline bool
	err     error
}

// actionDoneMsg reports the outcome of a mutation started from the UI.
type actionDoneMsg struct {
	status string
	err    error
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		offline := false
		if err := m.reminders.Load(m.ctx); err != nil {
			logger.Warn("Using cached reminders", "error", err)
			offline = true
			if err := m.reminders.LoadCached(); err != nil {
				return loadedMsg{err: err}
			}
		}
		if err := m.journal.Load(); err != nil {
			return loadedMsg{offline: offline, err: err}
		}
		return loadedMsg{offline: offline}
	}
}

func (m Model) toggleCmd(id string) tea.Cmd {
	return func() tea.Msg {
		r, err := m.reminders.Get(id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		updated, err := m.reminders.ToggleReminder(m.ctx, r)
		if err != nil {
			return actionDoneMsg{err: fmt.Errorf("échec de la modification: %w", err)}
		}
		if updated.IsActive {
			return actionDoneMsg{status: "Rappel activé: " + updated.Title}
		}
		return actionDoneMsg{status: "Rappel désactivé: " + updated.Title}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		r, err := m.reminders.Get(id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if err := m.reminders.DeleteReminder(m.ctx, r); err != nil {
			return actionDoneMsg{err: fmt.Errorf("échec de la suppression: %w", err)}
		}
		return actionDoneMsg{status: "Rappel supprimé: " + r.Title}
	}
}

func (m Model) createCmd(f ReminderFormModel) tea.Cmd {
	r := models.Reminder{
		Type:        models.ReminderType(f.Type),
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date,
		Time:        f.Time,
		Frequency:   models.Frequency(f.Frequency),
		EndDate:     f.EndDate,
	}
	return func() tea.Msg {
		created, err := m.reminders.CreateReminder(m.ctx, r)
		if err != nil {
			return actionDoneMsg{err: fmt.Errorf("échec de la création: %w", err)}
		}
		return actionDoneMsg{status: fmt.Sprintf("Rappel ajouté: %s (%d notification(s))", created.Title, len(created.ScheduledIDs()))}
	}
}

func (m Model) addNoteCmd(content string) tea.Cmd {
	e := models.JournalEntry{
		Date:    m.now().Format(constants.DateFormat),
		Type:    models.EntryNote,
		Content: content,
	}
	return func() tea.Msg {
		if _, err := m.journal.Add(e); err != nil {
			return actionDoneMsg{err: fmt.Errorf("échec de l'ajout: %w", err)}
		}
		return actionDoneMsg{status: "Note ajoutée au journal"}
	}
}
