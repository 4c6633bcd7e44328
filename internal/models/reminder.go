package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/DarkZangetsu/medcare/internal/constants"
)

// ReminderType is the kind of health event a reminder is about
type ReminderType string

// Frequency is the recurrence of a reminder
type Frequency string

const (
	ReminderMedication  ReminderType = "medication"
	ReminderAppointment ReminderType = "appointment"
	ReminderAnalysis    ReminderType = "analysis"

	FrequencyOnce    Frequency = "once"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"

	// TempReminderID identifies a reminder that has not been confirmed by the server yet
	TempReminderID = "temp"
)

type Reminder struct {
	ID              string       `json:"id"`
	Type            ReminderType `json:"type"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	Date            string       `json:"date"`                // YYYY-MM-DD
	Time            string       `json:"time"`                // HH:MM
	Frequency       Frequency    `json:"frequency,omitempty"` // empty means once
	EndDate         string       `json:"endDate,omitempty"`   // YYYY-MM-DD
	IsActive        bool         `json:"isActive"`
	NotificationID  string       `json:"notificationId,omitempty"`
	NotificationIDs []string     `json:"-"` // full series, local only
}

// ReminderPatch carries the fields of a partial reminder update. Nil means unchanged.
type ReminderPatch struct {
	Type           *ReminderType
	Title          *string
	Description    *string
	Date           *string
	Time           *string
	Frequency      *Frequency
	EndDate        *string
	IsActive       *bool
	NotificationID *string
}

// Apply returns a copy of r with the patch applied.
func (p ReminderPatch) Apply(r Reminder) Reminder {
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.Frequency != nil {
		r.Frequency = *p.Frequency
	}
	if p.EndDate != nil {
		r.EndDate = *p.EndDate
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
	if p.NotificationID != nil {
		r.NotificationID = *p.NotificationID
	}
	return r
}

// AffectsSchedule reports whether applying the patch changes when notifications fire.
func (p ReminderPatch) AffectsSchedule() bool {
	return p.Date != nil || p.Time != nil || p.Frequency != nil || p.EndDate != nil ||
		p.Title != nil || p.Description != nil || p.Type != nil
}

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderMedication, ReminderAppointment, ReminderAnalysis:
		return true
	}
	return false
}

// Label returns the French noun used in notification bodies.
func (t ReminderType) Label() string {
	switch t {
	case ReminderMedication:
		return "médicament"
	case ReminderAppointment:
		return "rendez-vous"
	default:
		return "analyse"
	}
}

func (f Frequency) Valid() bool {
	switch f {
	case "", FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// IsRecurring reports whether the frequency repeats.
func (f Frequency) IsRecurring() bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

func (r *Reminder) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("reminder title cannot be empty")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("invalid reminder type %q (must be medication, appointment or analysis)", r.Type)
	}
	if !r.Frequency.Valid() {
		return fmt.Errorf("invalid frequency %q (must be once, daily, weekly or monthly)", r.Frequency)
	}
	if _, err := time.Parse(constants.DateFormat, r.Date); err != nil {
		return fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}
	if _, err := ParseClock(r.Time); err != nil {
		return err
	}
	if r.EndDate != "" {
		end, err := time.Parse(constants.DateFormat, r.EndDate)
		if err != nil {
			return fmt.Errorf("invalid end date format (expected YYYY-MM-DD): %w", err)
		}
		start, _ := time.Parse(constants.DateFormat, r.Date)
		if end.Before(start) {
			return fmt.Errorf("end date %s is before start date %s", r.EndDate, r.Date)
		}
	}
	return nil
}

// EffectiveFrequency returns the frequency with the empty value normalised to once.
func (r *Reminder) EffectiveFrequency() Frequency {
	if r.Frequency == "" {
		return FrequencyOnce
	}
	return r.Frequency
}

// ScheduledIDs returns every notification identifier known for the reminder,
// falling back to the single back-reference kept by the server.
func (r *Reminder) ScheduledIDs() []string {
	if len(r.NotificationIDs) > 0 {
		return r.NotificationIDs
	}
	if r.NotificationID != "" {
		return []string{r.NotificationID}
	}
	return nil
}

// FirstTrigger combines Date and Time into a single instant in loc.
func (r *Reminder) FirstTrigger(loc *time.Location) (time.Time, error) {
	date, err := time.Parse(constants.DateFormat, r.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	clock, err := ParseClock(r.Time)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// NotificationTitle is the title shown when the reminder fires.
func (r *Reminder) NotificationTitle() string {
	return "Rappel: " + r.Title
}

// NotificationBody is the description, or a default sentence based on the type.
func (r *Reminder) NotificationBody() string {
	if r.Description != "" {
		return r.Description
	}
	return fmt.Sprintf("N'oubliez pas votre %s", r.Type.Label())
}

// FormatFrequency returns a human-readable description of the recurrence
func (r *Reminder) FormatFrequency() string {
	switch r.EffectiveFrequency() {
	case FrequencyDaily:
		return withEnd("Daily", r.EndDate)
	case FrequencyWeekly:
		return withEnd("Weekly", r.EndDate)
	case FrequencyMonthly:
		return withEnd("Monthly", r.EndDate)
	default:
		return fmt.Sprintf("Once on %s", r.Date)
	}
}

func withEnd(label, end string) string {
	if end == "" {
		return label
	}
	return fmt.Sprintf("%s until %s", label, end)
}

// ParseClock parses a time of day in HH:MM or HH:MM:SS form.
func ParseClock(s string) (time.Time, error) {
	if t, err := time.Parse(constants.TimeFormat, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(constants.TimeFormatSeconds, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format (expected HH:MM): %q", s)
	}
	return t, nil
}
