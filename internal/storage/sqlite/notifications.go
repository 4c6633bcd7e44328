package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/models"
)

const notificationColumns = "id, reminder_id, title, body, trigger_unix, status, sent_at, created_at"

func scanNotification(row rowScanner) (models.ScheduledNotification, error) {
	var n models.ScheduledNotification
	var triggerUnix int64
	var status, createdAt string
	var sentAt sql.NullString
	if err := row.Scan(&n.ID, &n.ReminderID, &n.Title, &n.Body, &triggerUnix, &status, &sentAt, &createdAt); err != nil {
		return models.ScheduledNotification{}, err
	}
	n.TriggerAt = time.Unix(triggerUnix, 0).UTC()
	n.Status = models.NotificationStatus(status)
	if sentAt.Valid {
		t, err := parseTime(sentAt.String)
		if err != nil {
			return models.ScheduledNotification{}, fmt.Errorf("failed to parse sent_at: %w", err)
		}
		n.SentAt = &t
	}
	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.ScheduledNotification{}, fmt.Errorf("failed to parse created_at: %w", err)
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
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?)
	`, n.ID, n.ReminderID, n.Title, n.Body, n.TriggerAt.Unix(), string(status), formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *Store) GetNotification(id string) (models.ScheduledNotification, error) {
	row := s.db.QueryRow("SELECT "+notificationColumns+" FROM scheduled_notifications WHERE id = ?", id)
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
		WHERE status = ? AND trigger_unix <= ?
		ORDER BY trigger_unix, id
	`, string(models.NotificationScheduled), now.Unix())
}

func (s *Store) GetPendingNotifications() ([]models.ScheduledNotification, error) {
	return s.queryNotifications(`
		SELECT `+notificationColumns+`
		FROM scheduled_notifications
		WHERE status = ?
		ORDER BY trigger_unix, id
	`, string(models.NotificationScheduled))
}

func (s *Store) UpdateNotificationStatus(id string, status models.NotificationStatus, sentAt *time.Time) error {
	var sent sql.NullString
	if sentAt != nil {
		sent = sql.NullString{String: formatTime(*sentAt), Valid: true}
	}
	res, err := s.db.Exec("UPDATE scheduled_notifications SET status = ?, sent_at = ? WHERE id = ?", string(status), sent, id)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("notification", id)
	}
	return nil
}

func (s *Store) CancelAllNotifications() (int, error) {
	res, err := s.db.Exec("UPDATE scheduled_notifications SET status = ? WHERE status = ?",
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
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.NotificationID, d.Channel, d.Status, d.Error, formatTime(d.SentAt))
	if err != nil {
		return fmt.Errorf("failed to insert delivery: %w", err)
	}
	return nil
}

func (s *Store) GetDeliveries(notificationID string) ([]models.Delivery, error) {
	rows, err := s.db.Query(`
		SELECT id, notification_id, channel, status, error, sent_at
		FROM deliveries
		WHERE notification_id = ?
		ORDER BY sent_at, id
	`, notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []models.Delivery
	for rows.Next() {
		var d models.Delivery
		var sentAt string
		if err := rows.Scan(&d.ID, &d.NotificationID, &d.Channel, &d.Status, &d.Error, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		if d.SentAt, err = parseTime(sentAt); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
