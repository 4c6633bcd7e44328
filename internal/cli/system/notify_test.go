package system

import (
	"context"
	"testing"
	"time"

	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/notifier"
)

func TestNotifyCmd_DisabledNotifications(t *testing.T) {
	ctx, store := setupTestDB(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	settings.NotificationsEnabled = false
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	if err := (&NotifyCmd{}).Run(ctx); err != nil {
		t.Errorf("notify should be a no-op when disabled, got %v", err)
	}
}

func TestNotifyCmd_DueWithoutChannelsStaysScheduled(t *testing.T) {
	ctx, store := setupTestDB(t)

	id, err := notifier.NewLocalScheduler(store).ScheduleAt(context.Background(), notifier.Notification{
		Title:     "Rappel: Aspirin",
		Body:      "Take 1 pill",
		TriggerAt: time.Now().Add(-time.Minute),
		Data:      map[string]string{notifier.DataReminderID: "r1"},
	})
	if err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}

	if err := (&NotifyCmd{DryRun: true}).Run(ctx); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if err := (&NotifyCmd{}).Run(ctx); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	n, err := store.GetNotification(id)
	if err != nil {
		t.Fatalf("failed to get notification: %v", err)
	}
	if n.Status != models.NotificationScheduled {
		t.Errorf("Status = %s, want scheduled", n.Status)
	}
}
