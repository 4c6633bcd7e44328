package api

import (
	"context"
	"strings"
	"time"

	"github.com/machinebox/graphql"

	"github.com/DarkZangetsu/medcare/internal/models"
)

const doctorFields = `
	id
	name
	specialty
	avatar
	price
	isOnline
	rating
`

const getDoctorsQuery = `query GetDoctors {
	doctors {` + doctorFields + `}
}`

const messageFields = `
	id
	senderId
	senderType
	content
	photoUri
	audioUri
	createdAt
`

const consultationFields = `
	id
	status
	createdAt
	updatedAt
	doctor {` + doctorFields + `}
	messages {` + messageFields + `}
`

const getConsultationsQuery = `query GetConsultations($status: String) {
	consultations(status: $status) {` + consultationFields + `}
}`

const createConsultationMutation = `mutation CreateConsultation($doctorId: ID!) {
	createConsultation(doctorId: $doctorId) {
		consultation {` + consultationFields + `}
	}
}`

const sendMessageMutation = `mutation SendMessage($consultationId: ID!, $content: String, $photoUri: String, $audioUri: String) {
	sendMessage(consultationId: $consultationId, content: $content, photoUri: $photoUri, audioUri: $audioUri) {
		message {` + messageFields + `}
	}
}`

const updateConsultationStatusMutation = `mutation UpdateConsultationStatus($id: ID!, $status: String!) {
	updateConsultationStatus(id: $id, status: $status) {
		success
	}
}`

const initiatePaymentMutation = `mutation InitiatePayment($consultationId: ID!, $amount: Float!, $operator: String!) {
	initiatePayment(consultationId: $consultationId, amount: $amount, operator: $operator) {
		payment {
			id
			amount
			operator
			status
			transactionId
			createdAt
		}
	}
}`

type doctorDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Specialty string   `json:"specialty"`
	Avatar    *string  `json:"avatar"`
	Price     float64  `json:"price"`
	IsOnline  bool     `json:"isOnline"`
	Rating    *float64 `json:"rating"`
}

func (d doctorDTO) toModel() models.Doctor {
	doc := models.Doctor{
		ID:        d.ID,
		Name:      d.Name,
		Specialty: d.Specialty,
		Price:     d.Price,
		IsOnline:  d.IsOnline,
		Rating:    d.Rating,
	}
	if d.Avatar != nil {
		doc.Avatar = *d.Avatar
	}
	return doc
}

type messageDTO struct {
	ID         string    `json:"id"`
	SenderID   *string   `json:"senderId"`
	SenderType string    `json:"senderType"`
	Content    *string   `json:"content"`
	PhotoURI   *string   `json:"photoUri"`
	AudioURI   *string   `json:"audioUri"`
	CreatedAt  time.Time `json:"createdAt"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (d messageDTO) toModel(consultationID string) models.Message {
	return models.Message{
		ID:             d.ID,
		ConsultationID: consultationID,
		SenderID:       deref(d.SenderID),
		SenderType:     models.SenderType(strings.ToLower(d.SenderType)),
		Content:        deref(d.Content),
		PhotoURI:       deref(d.PhotoURI),
		AudioURI:       deref(d.AudioURI),
		CreatedAt:      d.CreatedAt,
	}
}

type consultationDTO struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Doctor    doctorDTO    `json:"doctor"`
	Messages  []messageDTO `json:"messages"`
}

func (d consultationDTO) toModel() models.Consultation {
	c := models.Consultation{
		ID:        d.ID,
		DoctorID:  d.Doctor.ID,
		Doctor:    d.Doctor.toModel(),
		Status:    models.ConsultationStatus(strings.ToLower(d.Status)),
		Messages:  make([]models.Message, 0, len(d.Messages)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, m := range d.Messages {
		c.Messages = append(c.Messages, m.toModel(d.ID))
	}
	return c
}

type paymentDTO struct {
	ID            string    `json:"id"`
	Amount        float64   `json:"amount"`
	Operator      string    `json:"operator"`
	Status        string    `json:"status"`
	TransactionID *string   `json:"transactionId"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (c *Client) Doctors(ctx context.Context) ([]models.Doctor, error) {
	var resp struct {
		Doctors []doctorDTO `json:"doctors"`
	}
	if err := c.run(ctx, "list doctors", graphql.NewRequest(getDoctorsQuery), &resp); err != nil {
		return nil, err
	}
	doctors := make([]models.Doctor, 0, len(resp.Doctors))
	for _, d := range resp.Doctors {
		doctors = append(doctors, d.toModel())
	}
	return doctors, nil
}

// Consultations lists the patient's consultations, optionally filtered by status.
func (c *Client) Consultations(ctx context.Context, status models.ConsultationStatus) ([]models.Consultation, error) {
	req := graphql.NewRequest(getConsultationsQuery)
	req.Var("status", nullable(string(status)))

	var resp struct {
		Consultations []consultationDTO `json:"consultations"`
	}
	if err := c.run(ctx, "list consultations", req, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Consultation, 0, len(resp.Consultations))
	for _, d := range resp.Consultations {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (c *Client) CreateConsultation(ctx context.Context, doctorID string) (models.Consultation, error) {
	req := graphql.NewRequest(createConsultationMutation)
	req.Var("doctorId", doctorID)

	var resp struct {
		CreateConsultation struct {
			Consultation *consultationDTO `json:"consultation"`
		} `json:"createConsultation"`
	}
	if err := c.run(ctx, "create consultation", req, &resp); err != nil {
		return models.Consultation{}, err
	}
	if resp.CreateConsultation.Consultation == nil {
		return models.Consultation{}, remoteFailure("create consultation", "server returned no consultation")
	}
	return resp.CreateConsultation.Consultation.toModel(), nil
}

func (c *Client) SendMessage(ctx context.Context, m models.Message) (models.Message, error) {
	req := graphql.NewRequest(sendMessageMutation)
	req.Var("consultationId", m.ConsultationID)
	req.Var("content", nullable(m.Content))
	req.Var("photoUri", nullable(m.PhotoURI))
	req.Var("audioUri", nullable(m.AudioURI))

	var resp struct {
		SendMessage struct {
			Message *messageDTO `json:"message"`
		} `json:"sendMessage"`
	}
	if err := c.run(ctx, "send message", req, &resp); err != nil {
		return models.Message{}, err
	}
	if resp.SendMessage.Message == nil {
		return models.Message{}, remoteFailure("send message", "server returned no message")
	}
	return resp.SendMessage.Message.toModel(m.ConsultationID), nil
}

func (c *Client) UpdateConsultationStatus(ctx context.Context, id string, status models.ConsultationStatus) error {
	req := graphql.NewRequest(updateConsultationStatusMutation)
	req.Var("id", id)
	req.Var("status", string(status))

	var resp struct {
		UpdateConsultationStatus struct {
			Success bool `json:"success"`
		} `json:"updateConsultationStatus"`
	}
	if err := c.run(ctx, "update consultation status", req, &resp); err != nil {
		return err
	}
	if !resp.UpdateConsultationStatus.Success {
		return remoteFailure("update consultation status", "server refused status "+string(status))
	}
	return nil
}

// InitiatePayment asks the server to start a mobile money payment.
func (c *Client) InitiatePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	req := graphql.NewRequest(initiatePaymentMutation)
	req.Var("consultationId", p.ConsultationID)
	req.Var("amount", p.Amount)
	req.Var("operator", string(p.Operator))

	var resp struct {
		InitiatePayment struct {
			Payment *paymentDTO `json:"payment"`
		} `json:"initiatePayment"`
	}
	if err := c.run(ctx, "initiate payment", req, &resp); err != nil {
		return models.Payment{}, err
	}
	d := resp.InitiatePayment.Payment
	if d == nil {
		return models.Payment{}, remoteFailure("initiate payment", "server returned no payment")
	}
	return models.Payment{
		ID:             d.ID,
		ConsultationID: p.ConsultationID,
		Amount:         d.Amount,
		Operator:       models.Operator(strings.ToLower(d.Operator)),
		Status:         models.PaymentStatus(strings.ToLower(d.Status)),
		TransactionID:  deref(d.TransactionID),
		CreatedAt:      d.CreatedAt,
	}, nil
}
