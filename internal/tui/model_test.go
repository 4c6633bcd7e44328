package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DarkZangetsu/medcare/internal/journal"
	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/notifier"
	"github.com/DarkZangetsu/medcare/internal/reminders"
	"github.com/DarkZangetsu/medcare/internal/storage/sqlite"
	"github.com/DarkZangetsu/medcare/internal/tui/components/reminderlist"
)

type offlineRemote struct{}

var errOffline = errors.New("network unreachable")

func (offlineRemote) ListReminders(ctx context.Context) ([]models.Reminder, error) {
	return nil, errOffline
}

func (offlineRemote) CreateReminder(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	return models.Reminder{}, errOffline
}

func (offlineRemote) UpdateReminder(ctx context.Context, id string, patch models.ReminderPatch) (models.Reminder, error) {
	return models.Reminder{}, errOffline
}

func (offlineRemote) DeleteReminder(ctx context.Context, id string) error {
	return errOffline
}

func setupModel(t *testing.T) (Model, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "tui.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	rm := reminders.NewManager(offlineRemote{}, notifier.NewLocalScheduler(store), store)
	return NewModel(context.Background(), rm, journal.New(store)), store
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func TestTabNavigation(t *testing.T) {
	m, _ := setupModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateReminders {
		t.Errorf("state after tab = %v, want reminders", m.state)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateDashboard {
		t.Errorf("state after three tabs = %v, want dashboard", m.state)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.state != StateJournal {
		t.Errorf("state after shift+tab = %v, want journal", m.state)
	}
}

func TestLoadFallsBackToCache(t *testing.T) {
	m, store := setupModel(t)

	cached := models.Reminder{
		ID: "r1", Type: models.ReminderMedication, Title: "Metformin",
		Date: "2099-06-01", Time: "08:00", Frequency: models.FrequencyOnce,
	}
	if err := store.SaveReminder(cached); err != nil {
		t.Fatalf("failed to save reminder: %v", err)
	}

	msg := m.loadCmd()()
	loaded, ok := msg.(loadedMsg)
	if !ok {
		t.Fatalf("loadCmd returned %T", msg)
	}
	if !loaded.offline || loaded.err != nil {
		t.Fatalf("loadedMsg = %+v, want offline without error", loaded)
	}

	m, _ = update(t, m, loaded)
	if !m.offline {
		t.Error("model should be marked offline")
	}
	if got := len(m.reminders.Reminders()); got != 1 {
		t.Errorf("reminders = %d, want 1", got)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, _ := setupModel(t)
	m.state = StateReminders

	m, _ = update(t, m, reminderlist.DeleteReminderMsg{ID: "r1", Title: "Metformin"})
	if m.state != StateConfirmDelete {
		t.Fatalf("state = %v, want confirm delete", m.state)
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.state != StateReminders || cmd != nil {
		t.Errorf("declining should return to the list without a command")
	}
}

func TestAddReminderOpensForm(t *testing.T) {
	m, _ := setupModel(t)
	m.state = StateReminders

	m, _ = update(t, m, reminderlist.AddReminderMsg{})
	if m.state != StateAddReminder || m.form == nil {
		t.Fatalf("state = %v, want add reminder form", m.state)
	}
	if m.reminderForm.Type != "medication" || m.reminderForm.Frequency != "once" {
		t.Errorf("form defaults = %+v", m.reminderForm)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateReminders || m.form != nil {
		t.Errorf("esc should close the form")
	}
}

func TestActionErrorIsShown(t *testing.T) {
	m, _ := setupModel(t)

	m, _ = update(t, m, actionDoneMsg{err: errOffline})
	if m.err == nil {
		t.Fatal("expected error to be kept")
	}
	if view := m.View(); view == "" {
		t.Error("expected a rendered view")
	}

	m, _ = update(t, m, actionDoneMsg{status: "ok"})
	if m.err != nil || m.status != "ok" {
		t.Errorf("status = %q, err = %v", m.status, m.err)
	}
}

func TestFormValidators(t *testing.T) {
	if validDate("2025-13-01") == nil {
		t.Error("expected invalid month to fail")
	}
	if optionalDate("") != nil {
		t.Error("empty end date should be accepted")
	}
	if validClock("8h") == nil {
		t.Error("expected invalid clock to fail")
	}
	if validClock("08:00") != nil {
		t.Error("expected 08:00 to be valid")
	}
	if required("  ") == nil {
		t.Error("blank value should be rejected")
	}
}
