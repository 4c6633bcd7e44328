package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateDashboard:
		content = docStyle.Render(m.dashboard.View())
	case StateReminders:
		content = docStyle.Render(m.reminderList.View())
	case StateJournal:
		content = docStyle.Render(m.viewJournal())
	case StateAddReminder, StateAddNote:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.activeTab() == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// activeTab maps overlay states back to the tab they were opened from.
func (m Model) activeTab() SessionState {
	switch m.state {
	case StateAddReminder, StateConfirmDelete:
		return StateReminders
	case StateAddNote:
		return StateJournal
	}
	return m.state
}

func (m Model) viewJournal() string {
	if len(m.journalTable.Rows()) == 0 {
		return "\n  Journal vide.\n  Appuyez sur 'a' pour ajouter une note."
	}
	return m.journalTable.View()
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return errorStyle.Render("✗ " + m.err.Error())
	}
	if m.status != "" {
		return statusStyle.Render("✓ " + m.status)
	}
	return ""
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Supprimer le rappel « "+m.toDelete.Title+" » ?"),
			"",
			"[y] Oui",
			"[n] Non",
		),
	)
}
