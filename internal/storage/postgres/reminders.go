package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/models"
)

const reminderColumns = `id, type, title, description, date, time, frequency, end_date,
	is_active, notification_id, notification_ids`

type rowScanner interface {
	Scan(dest ...any) error
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func scanReminder(row rowScanner) (models.Reminder, error) {
	var r models.Reminder
	var reminderType, frequency string
	var idsJSON []byte
	if err := row.Scan(
		&r.ID, &reminderType, &r.Title, &r.Description, &r.Date, &r.Time, &frequency, &r.EndDate,
		&r.IsActive, &r.NotificationID, &idsJSON,
	); err != nil {
		return models.Reminder{}, err
	}
	r.Type = models.ReminderType(reminderType)
	r.Frequency = models.Frequency(frequency)
	if err := json.Unmarshal(idsJSON, &r.NotificationIDs); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to unmarshal notification ids: %w", err)
	}
	if len(r.NotificationIDs) == 0 {
		r.NotificationIDs = nil
	}
	return r, nil
}

func upsertReminder(db execer, r models.Reminder) error {
	ids := r.NotificationIDs
	if ids == nil {
		ids = []string{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal notification ids: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			date = EXCLUDED.date,
			time = EXCLUDED.time,
			frequency = EXCLUDED.frequency,
			end_date = EXCLUDED.end_date,
			is_active = EXCLUDED.is_active,
			notification_id = EXCLUDED.notification_id,
			notification_ids = EXCLUDED.notification_ids
	`,
		r.ID, string(r.Type), r.Title, r.Description, r.Date, r.Time, string(r.Frequency), r.EndDate,
		r.IsActive, r.NotificationID, string(idsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	return nil
}

func (s *Store) GetReminder(id string) (models.Reminder, error) {
	row := s.db.QueryRow("SELECT "+reminderColumns+" FROM reminders WHERE id = $1", id)
	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reminder{}, apperrors.NotFound("reminder", id)
	}
	if err != nil {
		return models.Reminder{}, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, nil
}

func (s *Store) GetAllReminders() ([]models.Reminder, error) {
	rows, err := s.db.Query("SELECT " + reminderColumns + " FROM reminders ORDER BY date, time, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

func (s *Store) SaveReminder(r models.Reminder) error {
	return upsertReminder(s.db, r)
}

func (s *Store) ReplaceReminders(reminders []models.Reminder) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM reminders"); err != nil {
		return fmt.Errorf("failed to clear reminders: %w", err)
	}
	for _, r := range reminders {
		if err := upsertReminder(tx, r); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteReminder(id string) error {
	res, err := s.db.Exec("DELETE FROM reminders WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("reminder", id)
	}
	return nil
}
