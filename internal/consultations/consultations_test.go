package consultations

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/storage/sqlite"
)

type fakeRemote struct {
	doctors       []models.Doctor
	consultations []models.Consultation
	next          int
	err           error
	lastPayment   models.Payment
}

func (f *fakeRemote) id(prefix string) string {
	f.next++
	return fmt.Sprintf("%s-%d", prefix, f.next)
}

func (f *fakeRemote) Doctors(ctx context.Context) ([]models.Doctor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doctors, nil
}

func (f *fakeRemote) Consultations(ctx context.Context, status models.ConsultationStatus) ([]models.Consultation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.consultations, nil
}

func (f *fakeRemote) CreateConsultation(ctx context.Context, doctorID string) (models.Consultation, error) {
	if f.err != nil {
		return models.Consultation{}, f.err
	}
	return models.Consultation{ID: f.id("c"), DoctorID: doctorID, Status: models.ConsultationPending}, nil
}

func (f *fakeRemote) SendMessage(ctx context.Context, m models.Message) (models.Message, error) {
	if f.err != nil {
		return models.Message{}, f.err
	}
	m.ID = f.id("m")
	m.SenderID = "patient-1"
	return m, nil
}

func (f *fakeRemote) UpdateConsultationStatus(ctx context.Context, id string, status models.ConsultationStatus) error {
	return f.err
}

func (f *fakeRemote) InitiatePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	f.lastPayment = p
	if f.err != nil {
		return models.Payment{}, f.err
	}
	p.ID = f.id("p")
	p.TransactionID = "TX42"
	return p, nil
}

var remoteDown = apperrors.Remote("call", errors.New("network unreachable"))

func setupStore(t *testing.T) (*Store, *fakeRemote, *sqlite.Store) {
	t.Helper()
	db := sqlite.NewStore(filepath.Join(t.TempDir(), "consult.db"))
	if err := db.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	remote := &fakeRemote{doctors: []models.Doctor{
		{ID: "d1", Name: "Dr. Rakoto", Specialty: "Généraliste", Price: 15000, IsOnline: true},
		{ID: "d2", Name: "Dr. Rabe", Specialty: "Cardiologue", Price: 30000},
	}}
	s := NewStore(remote, db)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }
	return s, remote, db
}

func startConsultation(t *testing.T, s *Store) models.Consultation {
	t.Helper()
	ctx := context.Background()
	if _, err := s.RefreshDoctors(ctx); err != nil {
		t.Fatal(err)
	}
	c, err := s.Start(ctx, "d1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return c
}

func TestRefreshDoctors(t *testing.T) {
	s, remote, _ := setupStore(t)
	if _, err := s.RefreshDoctors(context.Background()); err != nil {
		t.Fatal(err)
	}
	doctors, err := s.Doctors()
	if err != nil {
		t.Fatal(err)
	}
	if len(doctors) != 2 {
		t.Errorf("expected 2 cached doctors, got %d", len(doctors))
	}

	remote.err = remoteDown
	if _, err := s.RefreshDoctors(context.Background()); !errors.Is(err, apperrors.ErrRemote) {
		t.Errorf("expected ErrRemote, got %v", err)
	}
	if doctors, _ := s.Doctors(); len(doctors) != 2 {
		t.Error("cache should survive a failed refresh")
	}
}

func TestStart(t *testing.T) {
	s, _, _ := setupStore(t)
	c := startConsultation(t, s)
	if c.Doctor.Name != "Dr. Rakoto" {
		t.Errorf("doctor not attached: %+v", c.Doctor)
	}
	stored, err := s.Consultation(c.ID)
	if err != nil {
		t.Fatalf("consultation not cached: %v", err)
	}
	if stored.Status != models.ConsultationPending {
		t.Errorf("status = %s", stored.Status)
	}

	if _, err := s.Start(context.Background(), "unknown"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown doctor, got %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	s, _, _ := setupStore(t)
	c := startConsultation(t, s)

	sent, err := s.SendMessage(context.Background(), models.Message{ConsultationID: c.ID, Content: "J'ai de la fièvre"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	got, _ := s.Consultation(c.ID)
	if len(got.Messages) != 1 || got.Messages[0].ID != sent.ID {
		t.Errorf("expected the server copy only, got %+v", got.Messages)
	}
	if got.Messages[0].SenderType != models.SenderPatient {
		t.Errorf("sender type = %s", got.Messages[0].SenderType)
	}
}

func TestSendMessageRollback(t *testing.T) {
	s, remote, _ := setupStore(t)
	c := startConsultation(t, s)
	remote.err = remoteDown

	if _, err := s.SendMessage(context.Background(), models.Message{ConsultationID: c.ID, Content: "hello"}); !errors.Is(err, apperrors.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	got, _ := s.Consultation(c.ID)
	if len(got.Messages) != 0 {
		t.Errorf("optimistic message should be rolled back, got %+v", got.Messages)
	}
}

func TestSendMessageValidation(t *testing.T) {
	s, _, _ := setupStore(t)
	c := startConsultation(t, s)
	if _, err := s.SendMessage(context.Background(), models.Message{ConsultationID: c.ID}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := s.SendMessage(context.Background(), models.Message{ConsultationID: "nope", Content: "x"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	s, remote, _ := setupStore(t)
	c := startConsultation(t, s)
	ctx := context.Background()

	if _, err := s.UpdateStatus(ctx, c.ID, models.ConsultationActive); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	got, _ := s.Consultation(c.ID)
	if got.Status != models.ConsultationActive {
		t.Errorf("status = %s, want active", got.Status)
	}

	remote.err = remoteDown
	if _, err := s.UpdateStatus(ctx, c.ID, models.ConsultationCompleted); !errors.Is(err, apperrors.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	got, _ = s.Consultation(c.ID)
	if got.Status != models.ConsultationActive {
		t.Errorf("status should be rolled back to active, got %s", got.Status)
	}

	if _, err := s.UpdateStatus(ctx, c.ID, "archived"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestInitiatePayment(t *testing.T) {
	s, remote, _ := setupStore(t)
	c := startConsultation(t, s)

	p, err := s.InitiatePayment(context.Background(), c.ID, models.OperatorMVola, 0)
	if err != nil {
		t.Fatalf("InitiatePayment() error = %v", err)
	}
	if remote.lastPayment.Amount != 15000 {
		t.Errorf("amount should default to the doctor's price, got %v", remote.lastPayment.Amount)
	}
	payments, err := s.Payments(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 || payments[0].ID != p.ID || payments[0].TransactionID != "TX42" {
		t.Errorf("unexpected payments: %+v", payments)
	}
}

func TestInitiatePaymentRollback(t *testing.T) {
	s, remote, _ := setupStore(t)
	c := startConsultation(t, s)
	remote.err = remoteDown

	if _, err := s.InitiatePayment(context.Background(), c.ID, models.OperatorOrange, 5000); !errors.Is(err, apperrors.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	payments, _ := s.Payments(c.ID)
	if len(payments) != 0 {
		t.Errorf("pending payment should be rolled back, got %+v", payments)
	}

	if _, err := s.InitiatePayment(context.Background(), c.ID, "paypal", 5000); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestLoadReplacesMessages(t *testing.T) {
	s, remote, _ := setupStore(t)
	created := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	remote.consultations = []models.Consultation{{
		ID: "c-9", DoctorID: "d2", Status: models.ConsultationActive,
		Doctor:    models.Doctor{ID: "d2", Name: "Dr. Rabe"},
		CreatedAt: created, UpdatedAt: created,
		Messages: []models.Message{
			{ID: "m-1", SenderType: models.SenderDoctor, Content: "Bonjour", CreatedAt: created},
		},
	}}

	for i := 0; i < 2; i++ {
		if err := s.Load(context.Background()); err != nil {
			t.Fatalf("Load() #%d error = %v", i, err)
		}
	}
	got, err := s.Consultation("c-9")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Messages) != 1 || got.Messages[0].ConsultationID != "c-9" {
		t.Errorf("unexpected messages after reload: %+v", got.Messages)
	}
}

func TestLoadDropsConsultationsGoneFromServer(t *testing.T) {
	s, remote, _ := setupStore(t)
	ctx := context.Background()
	created := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	remote.consultations = []models.Consultation{
		{ID: "c-1", DoctorID: "d1", Status: models.ConsultationActive, CreatedAt: created, UpdatedAt: created},
		{ID: "c-2", DoctorID: "d2", Status: models.ConsultationPending, CreatedAt: created, UpdatedAt: created},
	}
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	remote.consultations = remote.consultations[:1]
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got, err := s.Consultations()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "c-1" {
		t.Fatalf("Consultations() = %+v, want only c-1", got)
	}
	if _, err := s.Consultation("c-2"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("c-2 should be gone from the cache, got %v", err)
	}
}
