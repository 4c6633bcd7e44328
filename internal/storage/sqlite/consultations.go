package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/models"
)

func (s *Store) GetDoctors() ([]models.Doctor, error) {
	rows, err := s.db.Query("SELECT id, name, specialty, avatar, price, is_online, rating FROM doctors ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query doctors: %w", err)
	}
	defer rows.Close()

	var doctors []models.Doctor
	for rows.Next() {
		var d models.Doctor
		var rating sql.NullFloat64
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.Avatar, &d.Price, &d.IsOnline, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}
		if rating.Valid {
			v := rating.Float64
			d.Rating = &v
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

func (s *Store) ReplaceDoctors(doctors []models.Doctor) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM doctors"); err != nil {
		return fmt.Errorf("failed to clear doctors: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO doctors (id, name, specialty, avatar, price, is_online, rating) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range doctors {
		var rating sql.NullFloat64
		if d.Rating != nil {
			rating = sql.NullFloat64{Float64: *d.Rating, Valid: true}
		}
		if _, err := stmt.Exec(d.ID, d.Name, d.Specialty, d.Avatar, d.Price, d.IsOnline, rating); err != nil {
			return fmt.Errorf("failed to insert doctor %s: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

// SaveConsultation upserts the consultation row. Messages are stored separately.
func (s *Store) SaveConsultation(c models.Consultation) error {
	doctorJSON, err := json.Marshal(c.Doctor)
	if err != nil {
		return fmt.Errorf("failed to marshal doctor: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO consultations (id, doctor_id, doctor, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doctor_id = excluded.doctor_id,
			doctor = excluded.doctor,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, c.ID, c.DoctorID, string(doctorJSON), string(c.Status), formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save consultation: %w", err)
	}
	return nil
}

func scanConsultation(row rowScanner) (models.Consultation, error) {
	var c models.Consultation
	var doctorJSON, status, createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.DoctorID, &doctorJSON, &status, &createdAt, &updatedAt); err != nil {
		return models.Consultation{}, err
	}
	c.Status = models.ConsultationStatus(status)
	if err := json.Unmarshal([]byte(doctorJSON), &c.Doctor); err != nil {
		return models.Consultation{}, fmt.Errorf("failed to unmarshal doctor: %w", err)
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Consultation{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Consultation{}, err
	}
	return c, nil
}

func (s *Store) GetConsultation(id string) (models.Consultation, error) {
	row := s.db.QueryRow("SELECT id, doctor_id, doctor, status, created_at, updated_at FROM consultations WHERE id = ?", id)
	c, err := scanConsultation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Consultation{}, apperrors.NotFound("consultation", id)
	}
	if err != nil {
		return models.Consultation{}, fmt.Errorf("failed to get consultation: %w", err)
	}
	if c.Messages, err = s.getMessages(id); err != nil {
		return models.Consultation{}, err
	}
	return c, nil
}

func (s *Store) GetConsultations() ([]models.Consultation, error) {
	rows, err := s.db.Query("SELECT id, doctor_id, doctor, status, created_at, updated_at FROM consultations ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query consultations: %w", err)
	}

	var consultations []models.Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan consultation: %w", err)
		}
		consultations = append(consultations, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range consultations {
		if consultations[i].Messages, err = s.getMessages(consultations[i].ID); err != nil {
			return nil, err
		}
	}
	return consultations, nil
}

func (s *Store) DeleteConsultation(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE consultation_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	res, err := tx.Exec("DELETE FROM consultations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete consultation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("consultation", id)
	}
	return tx.Commit()
}

func (s *Store) getMessages(consultationID string) ([]models.Message, error) {
	rows, err := s.db.Query(`
		SELECT id, consultation_id, sender_id, sender_type, content, photo_uri, audio_uri, created_at
		FROM messages
		WHERE consultation_id = ?
		ORDER BY created_at, id
	`, consultationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		var senderType, createdAt string
		if err := rows.Scan(&m.ID, &m.ConsultationID, &m.SenderID, &senderType, &m.Content, &m.PhotoURI, &m.AudioURI, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.SenderType = models.SenderType(senderType)
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *Store) AddMessage(m models.Message) error {
	_, err := s.db.Exec(`
		INSERT INTO messages (id, consultation_id, sender_id, sender_type, content, photo_uri, audio_uri, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.ConsultationID, m.SenderID, string(m.SenderType), m.Content, m.PhotoURI, m.AudioURI, formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (s *Store) DeleteMessage(id string) error {
	if _, err := s.db.Exec("DELETE FROM messages WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (s *Store) SavePayment(p models.Payment) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO payments (id, consultation_id, amount, operator, status, transaction_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.ConsultationID, p.Amount, string(p.Operator), string(p.Status), p.TransactionID, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (s *Store) GetPayments(consultationID string) ([]models.Payment, error) {
	rows, err := s.db.Query(`
		SELECT id, consultation_id, amount, operator, status, transaction_id, created_at
		FROM payments
		WHERE consultation_id = ?
		ORDER BY created_at, id
	`, consultationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var operator, status, createdAt string
		if err := rows.Scan(&p.ID, &p.ConsultationID, &p.Amount, &operator, &status, &p.TransactionID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Operator = models.Operator(operator)
		p.Status = models.PaymentStatus(status)
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *Store) DeletePayment(id string) error {
	if _, err := s.db.Exec("DELETE FROM payments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}
