package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/models"
)

type fakeSender struct {
	channel string
	err     error
	sent    []Message
}

func (f *fakeSender) Channel() string { return f.channel }

func (f *fakeSender) Send(ctx context.Context, msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestDispatcherDeliver(t *testing.T) {
	store := setupStore(t)
	tray := &fakeSender{channel: constants.ChannelTray, err: errors.New("tray not running")}
	sms := &fakeSender{channel: constants.ChannelSMS}
	d := NewDispatcher(store, 0, tray, sms)

	if err := d.Deliver(context.Background(), Message{ID: "n1", Title: "t"}); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if len(sms.sent) != 1 {
		t.Errorf("sms sent %d messages", len(sms.sent))
	}

	deliveries, err := store.GetDeliveries("n1")
	if err != nil {
		t.Fatal(err)
	}
	if len(deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(deliveries))
	}
	statuses := map[string]string{}
	for _, del := range deliveries {
		statuses[del.Channel] = del.Status
	}
	if statuses[constants.ChannelTray] != "failed" || statuses[constants.ChannelSMS] != "sent" {
		t.Errorf("unexpected statuses: %v", statuses)
	}
}

func TestDispatcherDeliverAllFail(t *testing.T) {
	store := setupStore(t)
	d := NewDispatcher(store, 0, &fakeSender{channel: constants.ChannelPush, err: errors.New("boom")})
	if err := d.Deliver(context.Background(), Message{ID: "n1"}); err == nil {
		t.Error("expected error when every channel fails")
	}

	if err := NewDispatcher(store, 0).Deliver(context.Background(), Message{ID: "n2"}); err == nil {
		t.Error("expected error with no channels")
	}
}

func TestDispatchDue(t *testing.T) {
	store := setupStore(t)
	now := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

	add := func(id string, trigger time.Time) {
		t.Helper()
		err := store.AddNotification(models.ScheduledNotification{
			ID: id, ReminderID: "r1", Title: "Rappel: x", TriggerAt: trigger,
			Status: models.NotificationScheduled, CreatedAt: now.Add(-24 * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	add("due", now.Add(-5*time.Minute))
	add("stale", now.Add(-2*time.Hour))
	add("future", now.Add(time.Hour))

	sender := &fakeSender{channel: constants.ChannelTray}
	d := NewDispatcher(store, 30*time.Minute, sender)
	d.now = func() time.Time { return now }

	res, err := d.DispatchDue(context.Background())
	if err != nil {
		t.Fatalf("DispatchDue() error = %v", err)
	}
	if res.Sent != 1 || res.Expired != 1 || res.Failed != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(sender.sent) != 1 || sender.sent[0].ID != "due" {
		t.Errorf("unexpected messages: %+v", sender.sent)
	}
	if sender.sent[0].Data[DataReminderID] != "r1" {
		t.Errorf("reminder id not propagated: %v", sender.sent[0].Data)
	}

	want := map[string]models.NotificationStatus{
		"due":    models.NotificationSent,
		"stale":  models.NotificationExpired,
		"future": models.NotificationScheduled,
	}
	for id, status := range want {
		sn, err := store.GetNotification(id)
		if err != nil {
			t.Fatal(err)
		}
		if sn.Status != status {
			t.Errorf("%s status = %s, want %s", id, sn.Status, status)
		}
	}
	sn, _ := store.GetNotification("due")
	if sn.SentAt == nil || !sn.SentAt.Equal(now) {
		t.Errorf("sent_at = %v, want %v", sn.SentAt, now)
	}
}

func TestDispatchDueKeepsUndelivered(t *testing.T) {
	store := setupStore(t)
	now := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)
	err := store.AddNotification(models.ScheduledNotification{
		ID: "n1", Title: "t", TriggerAt: now.Add(-time.Minute),
		Status: models.NotificationScheduled, CreatedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}

	d := NewDispatcher(store, time.Hour, &fakeSender{channel: constants.ChannelTray, err: errors.New("offline")})
	d.now = func() time.Time { return now }

	res, err := d.DispatchDue(context.Background())
	if err != nil {
		t.Fatalf("DispatchDue() error = %v", err)
	}
	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Failed)
	}
	sn, _ := store.GetNotification("n1")
	if sn.Status != models.NotificationScheduled {
		t.Errorf("status = %s, want scheduled", sn.Status)
	}
}

func TestHandleReminderTask(t *testing.T) {
	store := setupStore(t)
	sender := &fakeSender{channel: constants.ChannelPush}
	handler := HandleReminderTask(NewDispatcher(store, 0, sender))

	task, err := NewReminderTask(ReminderPayload{ID: "n7", ReminderID: "r3", Title: "Rappel: Vaccine", Body: "Clinic"})
	if err != nil {
		t.Fatal(err)
	}
	if err := handler(context.Background(), task); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.ID != "n7" || msg.Data[DataReminderID] != "r3" || msg.Body != "Clinic" {
		t.Errorf("unexpected message: %+v", msg)
	}

	bad := asynq.NewTask(constants.TaskTypeReminderSend, []byte("{not json"))
	if err := handler(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("expected SkipRetry, got %v", err)
	}
}

func TestReminderPayloadRoundTrip(t *testing.T) {
	task, err := NewReminderTask(ReminderPayload{ID: "a", Data: map[string]string{"k": "v"}})
	if err != nil {
		t.Fatal(err)
	}
	var p ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Data["k"] != "v" {
		t.Errorf("data lost: %+v", p)
	}
}
