// Package consultations caches doctors and teleconsultations locally and
// mirrors patient actions to the server. Local changes are applied first
// and rolled back when the server rejects them.
package consultations

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/storage"
)

// Remote is the server API used by the store.
type Remote interface {
	Doctors(ctx context.Context) ([]models.Doctor, error)
	Consultations(ctx context.Context, status models.ConsultationStatus) ([]models.Consultation, error)
	CreateConsultation(ctx context.Context, doctorID string) (models.Consultation, error)
	SendMessage(ctx context.Context, m models.Message) (models.Message, error)
	UpdateConsultationStatus(ctx context.Context, id string, status models.ConsultationStatus) error
	InitiatePayment(ctx context.Context, p models.Payment) (models.Payment, error)
}

type Store struct {
	mu     sync.Mutex
	remote Remote
	store  storage.Provider
	now    func() time.Time
}

func NewStore(remote Remote, store storage.Provider) *Store {
	return &Store{remote: remote, store: store, now: time.Now}
}

// RefreshDoctors replaces the doctor cache with the server's list.
func (s *Store) RefreshDoctors(ctx context.Context) ([]models.Doctor, error) {
	doctors, err := s.remote.Doctors(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceDoctors(doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// Doctors returns the cached doctors.
func (s *Store) Doctors() ([]models.Doctor, error) {
	return s.store.GetDoctors()
}

// Load refreshes the consultation cache, messages included, from the server.
func (s *Store) Load(ctx context.Context) error {
	remote, err := s.remote.Consultations(ctx, "")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	keep := make(map[string]bool, len(remote))
	for _, c := range remote {
		if err := s.replace(c); err != nil {
			return err
		}
		keep[c.ID] = true
	}
	if err := s.prune(keep); err != nil {
		return err
	}
	logger.Debug("Consultations loaded", "count", len(remote))
	return nil
}

// prune drops cached consultations the server no longer returns.
func (s *Store) prune(keep map[string]bool) error {
	cached, err := s.store.GetConsultations()
	if err != nil {
		return err
	}
	for _, c := range cached {
		if keep[c.ID] {
			continue
		}
		if err := s.store.DeleteConsultation(c.ID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		logger.Debug("Dropped stale consultation", "id", c.ID)
	}
	return nil
}

func (s *Store) replace(c models.Consultation) error {
	if err := s.store.DeleteConsultation(c.ID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if err := s.store.SaveConsultation(c); err != nil {
		return err
	}
	for _, m := range c.Messages {
		m.ConsultationID = c.ID
		if err := s.store.AddMessage(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Consultations() ([]models.Consultation, error) {
	return s.store.GetConsultations()
}

func (s *Store) Consultation(id string) (models.Consultation, error) {
	return s.store.GetConsultation(id)
}

func (s *Store) Payments(consultationID string) ([]models.Payment, error) {
	return s.store.GetPayments(consultationID)
}

// Start opens a consultation with a cached doctor.
func (s *Store) Start(ctx context.Context, doctorID string) (models.Consultation, error) {
	doctor, err := s.doctor(doctorID)
	if err != nil {
		return models.Consultation{}, err
	}

	c, err := s.remote.CreateConsultation(ctx, doctorID)
	if err != nil {
		return models.Consultation{}, err
	}
	if c.Doctor.ID == "" {
		c.Doctor = doctor
	}
	c.DoctorID = doctorID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replace(c); err != nil {
		return models.Consultation{}, err
	}
	logger.Info("Consultation started", "id", c.ID, "doctor", doctor.Name)
	return c, nil
}

// SendMessage stores the patient's message right away and replaces it with
// the server's copy once sent. The local copy is removed if sending fails.
func (s *Store) SendMessage(ctx context.Context, m models.Message) (models.Message, error) {
	if strings.TrimSpace(m.Content) == "" && m.PhotoURI == "" && m.AudioURI == "" {
		return models.Message{}, apperrors.Invalid(errors.New("message must have content, a photo or an audio clip"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetConsultation(m.ConsultationID); err != nil {
		return models.Message{}, err
	}

	m.ID = uuid.New().String()
	m.SenderType = models.SenderPatient
	m.CreatedAt = s.now()
	if err := s.store.AddMessage(m); err != nil {
		return models.Message{}, err
	}

	sent, err := s.remote.SendMessage(ctx, m)
	if err != nil {
		if rbErr := s.store.DeleteMessage(m.ID); rbErr != nil {
			logger.Warn("Failed to roll back message", "id", m.ID, "error", rbErr)
		}
		return models.Message{}, err
	}

	if err := s.store.DeleteMessage(m.ID); err != nil {
		return models.Message{}, err
	}
	sent.ConsultationID = m.ConsultationID
	if err := s.store.AddMessage(sent); err != nil {
		return models.Message{}, err
	}
	return sent, nil
}

// UpdateStatus changes the consultation status locally, then remotely.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.ConsultationStatus) (models.Consultation, error) {
	if !status.Valid() {
		return models.Consultation{}, apperrors.Invalid(errors.New("invalid consultation status " + string(status)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.store.GetConsultation(id)
	if err != nil {
		return models.Consultation{}, err
	}
	after := before
	after.Status = status
	after.UpdatedAt = s.now()
	if err := s.store.SaveConsultation(after); err != nil {
		return models.Consultation{}, err
	}

	if err := s.remote.UpdateConsultationStatus(ctx, id, status); err != nil {
		if rbErr := s.store.SaveConsultation(before); rbErr != nil {
			logger.Warn("Failed to roll back consultation status", "id", id, "error", rbErr)
		}
		return models.Consultation{}, err
	}
	return after, nil
}

// InitiatePayment records a pending payment for the consultation and asks
// the server to start it. The amount defaults to the doctor's price.
func (s *Store) InitiatePayment(ctx context.Context, consultationID string, operator models.Operator, amount float64) (models.Payment, error) {
	if !operator.Valid() {
		return models.Payment{}, apperrors.Invalid(errors.New("invalid operator " + string(operator) + " (must be mvola, orange or airtel)"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.GetConsultation(consultationID)
	if err != nil {
		return models.Payment{}, err
	}
	if amount <= 0 {
		amount = c.Doctor.Price
	}
	if amount <= 0 {
		return models.Payment{}, apperrors.Invalid(errors.New("payment amount must be positive"))
	}

	pending := models.Payment{
		ID:             uuid.New().String(),
		ConsultationID: consultationID,
		Amount:         amount,
		Operator:       operator,
		Status:         models.PaymentPending,
		CreatedAt:      s.now(),
	}
	if err := s.store.SavePayment(pending); err != nil {
		return models.Payment{}, err
	}

	p, err := s.remote.InitiatePayment(ctx, pending)
	if err != nil {
		if rbErr := s.store.DeletePayment(pending.ID); rbErr != nil {
			logger.Warn("Failed to roll back payment", "id", pending.ID, "error", rbErr)
		}
		return models.Payment{}, err
	}

	if err := s.store.DeletePayment(pending.ID); err != nil {
		return models.Payment{}, err
	}
	p.ConsultationID = consultationID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = pending.CreatedAt
	}
	if err := s.store.SavePayment(p); err != nil {
		return models.Payment{}, err
	}
	logger.Info("Payment initiated", "id", p.ID, "operator", operator.Name(), "status", p.Status)
	return p, nil
}

func (s *Store) doctor(id string) (models.Doctor, error) {
	doctors, err := s.store.GetDoctors()
	if err != nil {
		return models.Doctor{}, err
	}
	i := slices.IndexFunc(doctors, func(d models.Doctor) bool { return d.ID == id })
	if i < 0 {
		return models.Doctor{}, apperrors.NotFound("doctor", id)
	}
	return doctors[i], nil
}
