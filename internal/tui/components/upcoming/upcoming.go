package upcoming

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/models"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	badgeStyles = map[models.ReminderType]lipgloss.Style{
		models.ReminderMedication:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Width(14),
		models.ReminderAppointment: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Width(14),
		models.ReminderAnalysis:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Width(14),
	}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true).
			MarginBottom(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model shows the next reminders and a short summary of the reminder set.
type Model struct {
	viewport  viewport.Model
	upcoming  []models.Reminder
	total     int
	active    int
	offline   bool
	updatedAt time.Time
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetReminders replaces the content. upcoming is expected to be sorted.
func (m *Model) SetReminders(upcoming, all []models.Reminder, offline bool, now time.Time) {
	m.upcoming = upcoming
	m.total = len(all)
	m.active = 0
	for _, r := range all {
		if r.IsActive {
			m.active++
		}
	}
	m.offline = offline
	m.updatedAt = now
	m.viewport.SetContent(m.render())
}

func (m Model) render() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Prochains rappels"))
	b.WriteString("\n")

	if len(m.upcoming) == 0 {
		b.WriteString(mutedStyle.Render("Aucun rappel à venir."))
		b.WriteString("\n")
	}
	for _, r := range m.upcoming {
		when := r.Date + " " + r.Time
		if d, err := time.Parse(constants.DateFormat, r.Date); err == nil {
			when = d.Format("Mon 02 Jan") + "  " + r.Time
		}
		badge, ok := badgeStyles[r.Type]
		if !ok {
			badge = lipgloss.NewStyle().Width(14)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			timeStyle.Render(when),
			badge.Render(r.Type.Label()),
			titleStyle.Render(r.Title),
		))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d rappel(s), %d actif(s)", m.total, m.active)))
	if m.offline {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Hors ligne: données du cache local"))
	}
	if !m.updatedAt.IsZero() {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Mis à jour à " + m.updatedAt.Format(constants.TimeFormat)))
	}
	return b.String()
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.render())
}
