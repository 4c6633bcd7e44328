package models

import "time"

type NotificationStatus string

const (
	NotificationScheduled NotificationStatus = "scheduled"
	NotificationSent      NotificationStatus = "sent"
	NotificationCancelled NotificationStatus = "cancelled"
	NotificationExpired   NotificationStatus = "expired"
)

// ScheduledNotification is a notification waiting in the local queue.
type ScheduledNotification struct {
	ID         string             `json:"id"`
	ReminderID string             `json:"reminder_id"`
	Title      string             `json:"title"`
	Body       string             `json:"body"`
	TriggerAt  time.Time          `json:"trigger_at"`
	Status     NotificationStatus `json:"status"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Delivery records one attempt to deliver a notification on a channel.
type Delivery struct {
	ID             string    `json:"id"`
	NotificationID string    `json:"notification_id"`
	Channel        string    `json:"channel"`
	Status         string    `json:"status"` // sent, failed
	Error          string    `json:"error,omitempty"`
	SentAt         time.Time `json:"sent_at"`
}
