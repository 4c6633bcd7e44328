package sqlite

import (
	"database/sql"
	"fmt"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/models"
)

func (s *Store) AddJournalEntry(e models.JournalEntry) error {
	var value sql.NullFloat64
	if e.MeasurementValue != nil {
		value = sql.NullFloat64{Float64: *e.MeasurementValue, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO journal_entries (
			id, date, type, content, measurement_type, measurement_value,
			measurement_unit, photo_uri, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.Date, string(e.Type), e.Content, string(e.MeasurementType), value,
		e.MeasurementUnit, e.PhotoURI, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

func (s *Store) GetJournalEntries() ([]models.JournalEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, date, type, content, measurement_type, measurement_value,
			measurement_unit, photo_uri, created_at
		FROM journal_entries
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var e models.JournalEntry
		var entryType, measurementType, createdAt string
		var value sql.NullFloat64
		if err := rows.Scan(
			&e.ID, &e.Date, &entryType, &e.Content, &measurementType, &value,
			&e.MeasurementUnit, &e.PhotoURI, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Type = models.EntryType(entryType)
		e.MeasurementType = models.MeasurementType(measurementType)
		if value.Valid {
			v := value.Float64
			e.MeasurementValue = &v
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteJournalEntry(id string) error {
	res, err := s.db.Exec("DELETE FROM journal_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("journal entry", id)
	}
	return nil
}
