// Package notifier schedules reminder notifications and delivers them on
// the configured channels (desktop tray, FCM push, Twilio SMS).
package notifier

import (
	"context"
	"time"
)

// DataReminderID is the payload key carrying the reminder a notification belongs to.
const DataReminderID = "reminderId"

// Notification is a request to show Title/Body at TriggerAt.
type Notification struct {
	Title     string
	Body      string
	TriggerAt time.Time
	Data      map[string]string
}

// Scheduler registers notifications for later delivery. Identifiers are
// opaque to callers. Cancel is idempotent: unknown or already delivered
// identifiers are not an error.
type Scheduler interface {
	ScheduleAt(ctx context.Context, n Notification) (string, error)
	Cancel(ctx context.Context, id string) error
	CancelAll(ctx context.Context) error
}

// Message is a notification being delivered now.
type Message struct {
	ID    string
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers a message on one channel.
type Sender interface {
	Channel() string
	Send(ctx context.Context, msg Message) error
}
