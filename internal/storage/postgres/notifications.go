package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/models"
)

const notificationColumns = "id, reminder_id, title, body, trigger_at, status, sent_at, created_at"

func scanNotification(row rowScanner) (models.ScheduledNotification, error) {
	var n models.ScheduledNotification
	var status string
	var sentAt sql.NullTime
	if err := row.Scan(&n.ID, &n.ReminderID, &n.Title, &n.Body, &n.TriggerAt, &status, &sentAt, &n.CreatedAt); err != nil {
		return models.ScheduledNotification{}, err
	}
	n.Status = models.NotificationStatus(status)
	if sentAt.Valid {
		t := sentAt.Time
		n.SentAt = &t
	}
	return n, nil
}

func (s *Store) queryNotifications(query string, args ...any) ([]models.ScheduledNotification, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.ScheduledNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *Store) AddNotification(n models.ScheduledNotification) error {
	status := n.Status
	if status == "" {
		status = models.NotificationScheduled
	}
	_, err := s.db.Exec(`
		INSERT INTO scheduled_notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, NULL, $7)
	`, n.ID, n.ReminderID, n.Title, n.Body, n.TriggerAt.UTC(), string(status), n.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *Store) GetNotification(id string) (models.ScheduledNotification, error) {
	row := s.db.QueryRow("SELECT "+notificationColumns+" FROM scheduled_notifications WHERE id = $1", id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ScheduledNotification{}, apperrors.NotFound("notification", id)
	}
	if err != nil {
		return models.ScheduledNotification{}, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

func (s *Store) GetDueNotifications(now time.Time) ([]models.ScheduledNotification, error) {
	return s.queryNotifications(`
		SELECT `+notificationColumns+`
		FROM scheduled_notifications
		WHERE status = $1 AND trigger_at <= $2
		ORDER BY trigger_at, id
	`, string(models.NotificationScheduled), now.UTC())
}

func (s *Store) GetPendingNotifications() ([]models.ScheduledNotification, error) {
	return s.queryNotifications(`
		SELECT `+notificationColumns+`
		FROM scheduled_notifications
		WHERE status = $1
		ORDER BY trigger_at, id
	`, string(models.NotificationScheduled))
}

func (s *Store) UpdateNotificationStatus(id string, status models.NotificationStatus, sentAt *time.Time) error {
	var sent sql.NullTime
	if sentAt != nil {
		sent = sql.NullTime{Time: sentAt.UTC(), Valid: true}
	}
	res, err := s.db.Exec("UPDATE scheduled_notifications SET status = $1, sent_at = $2 WHERE id = $3", string(status), sent, id)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("notification", id)
	}
	return nil
}

func (s *Store) CancelAllNotifications() (int, error) {
	res, err := s.db.Exec("UPDATE scheduled_notifications SET status = $1 WHERE status = $2",
		string(models.NotificationCancelled), string(models.NotificationScheduled))
	if err != nil {
		return 0, fmt.Errorf("failed to cancel notifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) AddDelivery(d models.Delivery) error {
	_, err := s.db.Exec(`
		INSERT INTO deliveries (id, notification_id, channel, status, error, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.ID, d.NotificationID, d.Channel, d.Status, d.Error, d.SentAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert delivery: %w", err)
	}
	return nil
}

func (s *Store) GetDeliveries(notificationID string) ([]models.Delivery, error) {
	rows, err := s.db.Query(`
		SELECT id, notification_id, channel, status, error, sent_at
		FROM deliveries
		WHERE notification_id = $1
		ORDER BY sent_at, id
	`, notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []models.Delivery
	for rows.Next() {
		var d models.Delivery
		if err := rows.Scan(&d.ID, &d.NotificationID, &d.Channel, &d.Status, &d.Error, &d.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
