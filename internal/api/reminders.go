package api

import (
	"context"
	"strings"

	"github.com/machinebox/graphql"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/models"
)

const reminderFields = `
	id
	type
	title
	description
	date
	time
	frequency
	endDate
	isActive
	notificationId
`

const listRemindersQuery = `query GetReminders {
	reminders {` + reminderFields + `}
}`

const createReminderMutation = `mutation CreateReminder(
	$type: String!, $title: String!, $description: String, $date: String!, $time: String!,
	$frequency: String, $endDate: String, $notificationId: String
) {
	createReminder(
		type: $type, title: $title, description: $description, date: $date, time: $time,
		frequency: $frequency, endDate: $endDate, notificationId: $notificationId
	) {
		reminder {` + reminderFields + `}
	}
}`

const updateReminderMutation = `mutation UpdateReminder(
	$id: ID!, $type: String, $title: String, $description: String, $date: String, $time: String,
	$frequency: String, $endDate: String, $isActive: Boolean, $notificationId: String
) {
	updateReminder(
		id: $id, type: $type, title: $title, description: $description, date: $date, time: $time,
		frequency: $frequency, endDate: $endDate, isActive: $isActive, notificationId: $notificationId
	) {
		reminder {` + reminderFields + `}
	}
}`

const deleteReminderMutation = `mutation DeleteReminder($id: ID!) {
	deleteReminder(id: $id) {
		success
	}
}`

// reminderDTO is the wire shape of a reminder. Nullable fields are pointers.
type reminderDTO struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	Frequency      *string `json:"frequency"`
	EndDate        *string `json:"endDate"`
	IsActive       *bool   `json:"isActive"`
	NotificationID *string `json:"notificationId"`
}

// toModel normalises server values: enum names are lower-cased, a missing
// frequency means once, a missing active flag means active and seconds are
// dropped from the time of day.
func (d reminderDTO) toModel() models.Reminder {
	r := models.Reminder{
		ID:        d.ID,
		Type:      models.ReminderType(strings.ToLower(d.Type)),
		Title:     d.Title,
		Date:      d.Date,
		Time:      d.Time,
		Frequency: models.FrequencyOnce,
		IsActive:  true,
	}
	if d.Description != nil {
		r.Description = *d.Description
	}
	if d.Frequency != nil && *d.Frequency != "" {
		r.Frequency = models.Frequency(strings.ToLower(*d.Frequency))
	}
	if d.EndDate != nil {
		r.EndDate = *d.EndDate
	}
	if d.IsActive != nil {
		r.IsActive = *d.IsActive
	}
	if d.NotificationID != nil {
		r.NotificationID = *d.NotificationID
	}
	if t, err := models.ParseClock(d.Time); err == nil {
		r.Time = t.Format(constants.TimeFormat)
	}
	return r
}

// nullable sends an empty string as GraphQL null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (c *Client) ListReminders(ctx context.Context) ([]models.Reminder, error) {
	var resp struct {
		Reminders []reminderDTO `json:"reminders"`
	}
	if err := c.run(ctx, "list reminders", graphql.NewRequest(listRemindersQuery), &resp); err != nil {
		return nil, err
	}

	reminders := make([]models.Reminder, 0, len(resp.Reminders))
	for _, d := range resp.Reminders {
		reminders = append(reminders, d.toModel())
	}
	return reminders, nil
}

// CreateReminder persists r remotely. The server assigns the id; the
// notification identifier is sent so the server can keep the back-reference.
func (c *Client) CreateReminder(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	req := graphql.NewRequest(createReminderMutation)
	req.Var("type", string(r.Type))
	req.Var("title", r.Title)
	req.Var("description", nullable(r.Description))
	req.Var("date", r.Date)
	req.Var("time", r.Time)
	req.Var("frequency", string(r.EffectiveFrequency()))
	req.Var("endDate", nullable(r.EndDate))
	req.Var("notificationId", nullable(r.NotificationID))

	var resp struct {
		CreateReminder struct {
			Reminder *reminderDTO `json:"reminder"`
		} `json:"createReminder"`
	}
	if err := c.run(ctx, "create reminder", req, &resp); err != nil {
		return models.Reminder{}, err
	}
	return checkReminder("create reminder", resp.CreateReminder.Reminder)
}

// UpdateReminder sends only the fields set in patch.
func (c *Client) UpdateReminder(ctx context.Context, id string, patch models.ReminderPatch) (models.Reminder, error) {
	req := graphql.NewRequest(updateReminderMutation)
	req.Var("id", id)
	if patch.Type != nil {
		req.Var("type", string(*patch.Type))
	}
	if patch.Title != nil {
		req.Var("title", *patch.Title)
	}
	if patch.Description != nil {
		req.Var("description", nullable(*patch.Description))
	}
	if patch.Date != nil {
		req.Var("date", *patch.Date)
	}
	if patch.Time != nil {
		req.Var("time", *patch.Time)
	}
	if patch.Frequency != nil {
		req.Var("frequency", string(*patch.Frequency))
	}
	if patch.EndDate != nil {
		req.Var("endDate", nullable(*patch.EndDate))
	}
	if patch.IsActive != nil {
		req.Var("isActive", *patch.IsActive)
	}
	if patch.NotificationID != nil {
		req.Var("notificationId", nullable(*patch.NotificationID))
	}

	var resp struct {
		UpdateReminder struct {
			Reminder *reminderDTO `json:"reminder"`
		} `json:"updateReminder"`
	}
	if err := c.run(ctx, "update reminder", req, &resp); err != nil {
		return models.Reminder{}, err
	}
	return checkReminder("update reminder", resp.UpdateReminder.Reminder)
}

func (c *Client) DeleteReminder(ctx context.Context, id string) error {
	req := graphql.NewRequest(deleteReminderMutation)
	req.Var("id", id)

	var resp struct {
		DeleteReminder struct {
			Success bool `json:"success"`
		} `json:"deleteReminder"`
	}
	if err := c.run(ctx, "delete reminder", req, &resp); err != nil {
		return err
	}
	if !resp.DeleteReminder.Success {
		return remoteFailure("delete reminder", "server refused to delete reminder "+id)
	}
	return nil
}

func checkReminder(op string, d *reminderDTO) (models.Reminder, error) {
	if d == nil {
		return models.Reminder{}, remoteFailure(op, "server returned no reminder")
	}
	if d.ID == "" {
		return models.Reminder{}, remoteFailure(op, "server returned a reminder without id")
	}
	return d.toModel(), nil
}
