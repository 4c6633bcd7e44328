package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/DarkZangetsu/medcare/internal/constants"
)

type EntryType string

type MeasurementType string

const (
	EntryNote        EntryType = "note"
	EntryMeasurement EntryType = "measurement"
	EntryPhoto       EntryType = "photo"

	MeasurementGlycemia      MeasurementType = "glycemia"
	MeasurementBloodPressure MeasurementType = "blood_pressure"
	MeasurementWeight        MeasurementType = "weight"
	MeasurementTemperature   MeasurementType = "temperature"
	MeasurementOther         MeasurementType = "other"
)

// JournalEntry is a health journal record. Entries are never edited, only deleted.
type JournalEntry struct {
	ID               string          `json:"id"`
	Date             string          `json:"date"` // YYYY-MM-DD
	Type             EntryType       `json:"type"`
	Content          string          `json:"content,omitempty"`
	MeasurementType  MeasurementType `json:"measurementType,omitempty"`
	MeasurementValue *float64        `json:"measurementValue,omitempty"`
	MeasurementUnit  string          `json:"measurementUnit,omitempty"`
	PhotoURI         string          `json:"photoUri,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func (m MeasurementType) Valid() bool {
	switch m {
	case MeasurementGlycemia, MeasurementBloodPressure, MeasurementWeight, MeasurementTemperature, MeasurementOther:
		return true
	}
	return false
}

// Label returns the French display name of the measurement.
func (m MeasurementType) Label() string {
	switch m {
	case MeasurementGlycemia:
		return "Glycémie"
	case MeasurementBloodPressure:
		return "Tension artérielle"
	case MeasurementWeight:
		return "Poids"
	case MeasurementTemperature:
		return "Température"
	default:
		return "Autre"
	}
}

func (e *JournalEntry) Validate() error {
	if _, err := time.Parse(constants.DateFormat, e.Date); err != nil {
		return fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}

	switch e.Type {
	case EntryNote:
		if strings.TrimSpace(e.Content) == "" {
			return fmt.Errorf("note content cannot be empty")
		}
	case EntryMeasurement:
		if !e.MeasurementType.Valid() {
			return fmt.Errorf("invalid measurement type %q", e.MeasurementType)
		}
		if e.MeasurementValue == nil {
			return fmt.Errorf("measurement value is required")
		}
	case EntryPhoto:
		if e.PhotoURI == "" {
			return fmt.Errorf("photo URI cannot be empty")
		}
	default:
		return fmt.Errorf("invalid entry type %q (must be note, measurement or photo)", e.Type)
	}

	return nil
}

// Summary returns a one-line description of the entry payload.
func (e *JournalEntry) Summary() string {
	switch e.Type {
	case EntryMeasurement:
		value := ""
		if e.MeasurementValue != nil {
			value = fmt.Sprintf("%g", *e.MeasurementValue)
		}
		return strings.TrimSpace(fmt.Sprintf("%s: %s %s", e.MeasurementType.Label(), value, e.MeasurementUnit))
	case EntryPhoto:
		return "Photo: " + e.PhotoURI
	default:
		return e.Content
	}
}
