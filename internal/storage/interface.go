// Package storage defines the persistence contract shared by the SQLite and
// PostgreSQL backends.
package storage

import (
	"time"

	"github.com/DarkZangetsu/medcare/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Reminders is the local mirror of the server's reminder list, plus the
	// full set of notification identifiers scheduled for each reminder.
	GetReminder(id string) (models.Reminder, error)
	GetAllReminders() ([]models.Reminder, error)
	SaveReminder(models.Reminder) error
	ReplaceReminders([]models.Reminder) error
	DeleteReminder(id string) error

	// Journal entries are returned newest first.
	AddJournalEntry(models.JournalEntry) error
	GetJournalEntries() ([]models.JournalEntry, error)
	DeleteJournalEntry(id string) error

	// Doctors
	GetDoctors() ([]models.Doctor, error)
	ReplaceDoctors([]models.Doctor) error

	// Consultations are returned with their messages, newest first.
	SaveConsultation(models.Consultation) error
	GetConsultation(id string) (models.Consultation, error)
	GetConsultations() ([]models.Consultation, error)
	DeleteConsultation(id string) error
	AddMessage(models.Message) error
	DeleteMessage(id string) error

	// Payments
	SavePayment(models.Payment) error
	GetPayments(consultationID string) ([]models.Payment, error)
	DeletePayment(id string) error

	// Scheduled notifications
	AddNotification(models.ScheduledNotification) error
	GetNotification(id string) (models.ScheduledNotification, error)
	// GetDueNotifications returns scheduled notifications whose trigger is at or before now.
	GetDueNotifications(now time.Time) ([]models.ScheduledNotification, error)
	GetPendingNotifications() ([]models.ScheduledNotification, error)
	UpdateNotificationStatus(id string, status models.NotificationStatus, sentAt *time.Time) error
	// CancelAllNotifications marks every scheduled notification cancelled and
	// returns how many were affected.
	CancelAllNotifications() (int, error)
	AddDelivery(models.Delivery) error
	GetDeliveries(notificationID string) ([]models.Delivery, error)

	// Utils
	GetConfigPath() string
}
