package models

import "time"

type ConsultationStatus string

type SenderType string

type Operator string

type PaymentStatus string

const (
	ConsultationPending   ConsultationStatus = "pending"
	ConsultationActive    ConsultationStatus = "active"
	ConsultationCompleted ConsultationStatus = "completed"
	ConsultationCancelled ConsultationStatus = "cancelled"

	SenderPatient SenderType = "patient"
	SenderDoctor  SenderType = "doctor"

	OperatorMVola  Operator = "mvola"
	OperatorOrange Operator = "orange"
	OperatorAirtel Operator = "airtel"

	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

type Doctor struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Specialty string   `json:"specialty"`
	Avatar    string   `json:"avatar,omitempty"`
	Price     float64  `json:"price"`
	IsOnline  bool     `json:"isOnline"`
	Rating    *float64 `json:"rating,omitempty"`
}

type Consultation struct {
	ID        string             `json:"id"`
	DoctorID  string             `json:"doctorId"`
	Doctor    Doctor             `json:"doctor"`
	Status    ConsultationStatus `json:"status"`
	Messages  []Message          `json:"messages"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type Message struct {
	ID             string     `json:"id"`
	ConsultationID string     `json:"consultationId"`
	SenderID       string     `json:"senderId"`
	SenderType     SenderType `json:"senderType"`
	Content        string     `json:"content,omitempty"`
	PhotoURI       string     `json:"photoUri,omitempty"`
	AudioURI       string     `json:"audioUri,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type Payment struct {
	ID             string        `json:"id"`
	ConsultationID string        `json:"consultationId"`
	Amount         float64       `json:"amount"`
	Operator       Operator      `json:"operator"`
	Status         PaymentStatus `json:"status"`
	TransactionID  string        `json:"transactionId,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func (s ConsultationStatus) Valid() bool {
	switch s {
	case ConsultationPending, ConsultationActive, ConsultationCompleted, ConsultationCancelled:
		return true
	}
	return false
}

func (o Operator) Valid() bool {
	switch o {
	case OperatorMVola, OperatorOrange, OperatorAirtel:
		return true
	}
	return false
}

// Name returns the commercial name of the mobile money operator.
func (o Operator) Name() string {
	switch o {
	case OperatorMVola:
		return "MVola"
	case OperatorOrange:
		return "Orange Money"
	case OperatorAirtel:
		return "Airtel Money"
	default:
		return string(o)
	}
}

// MedicalPDF is a document attached to a consultation.
type MedicalPDF struct {
	ID             string    `json:"id"`
	ConsultationID string    `json:"consultationId"`
	FileName       string    `json:"fileName"`
	FileURI        string    `json:"fileUri"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TriageResult is the answer of the AI triage service.
type TriageResult struct {
	ID             string `json:"id"`
	Symptoms       string `json:"symptoms"`
	Severity       string `json:"severity"` // low, medium, high, critical
	Advice         string `json:"advice"`
	Recommendation string `json:"recommendation"`
}
