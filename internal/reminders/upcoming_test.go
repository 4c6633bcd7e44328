package reminders

import (
	"fmt"
	"testing"
	"time"

	"github.com/DarkZangetsu/medcare/internal/models"
)

func reminderAt(id, date, clock string, active bool) models.Reminder {
	return models.Reminder{
		ID: id, Type: models.ReminderMedication, Title: "R" + id,
		Date: date, Time: clock, Frequency: models.FrequencyOnce, IsActive: active,
	}
}

func TestUpcomingReminders(t *testing.T) {
	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		all  []models.Reminder
		want []string
	}{
		{
			name: "empty",
			all:  nil,
			want: []string{},
		},
		{
			name: "orders by trigger",
			all: []models.Reminder{
				reminderAt("c", "2025-06-02", "08:00", true),
				reminderAt("a", "2025-05-30", "13:00", true),
				reminderAt("b", "2025-06-01", "07:00", true),
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "skips inactive and past",
			all: []models.Reminder{
				reminderAt("past", "2025-05-29", "08:00", true),
				reminderAt("off", "2025-06-01", "08:00", false),
				reminderAt("now", "2025-05-30", "12:00", true),
				reminderAt("bad", "30/05/2025", "08:00", true),
			},
			want: []string{"now"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpcomingReminders(tt.all, now)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d reminders, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestUpcomingRemindersBound(t *testing.T) {
	now := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	var all []models.Reminder
	for i := 9; i >= 0; i-- {
		all = append(all, reminderAt(fmt.Sprint(i), fmt.Sprintf("2025-06-%02d", i+1), "08:00", i%3 != 0))
	}

	got := UpcomingReminders(all, now)
	if len(got) > 5 {
		t.Fatalf("got %d reminders, want at most 5", len(got))
	}
	var prev time.Time
	for _, r := range got {
		if !r.IsActive {
			t.Errorf("inactive reminder %s returned", r.ID)
		}
		at, _ := r.FirstTrigger(time.UTC)
		if at.Before(prev) {
			t.Errorf("reminder %s out of order", r.ID)
		}
		prev = at
	}
}

func TestFilterByType(t *testing.T) {
	all := []models.Reminder{
		{ID: "1", Type: models.ReminderMedication},
		{ID: "2", Type: models.ReminderAppointment},
		{ID: "3", Type: models.ReminderMedication},
	}
	if got := FilterByType(all, models.ReminderMedication); len(got) != 2 {
		t.Errorf("medication = %d, want 2", len(got))
	}
	if got := FilterByType(all, models.ReminderAnalysis); len(got) != 0 {
		t.Errorf("analysis = %d, want 0", len(got))
	}
	if got := FilterByType(all, ""); len(got) != 3 {
		t.Errorf("all = %d, want 3", len(got))
	}
}
