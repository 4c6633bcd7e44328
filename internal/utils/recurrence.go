package utils

import (
	"fmt"
	"iter"
	"time"

	"github.com/DarkZangetsu/medcare/internal/models"
)

// Occurrences returns the lazy sequence of trigger instants of a reminder.
//
// One-time reminders, and recurring reminders without an end date, yield only
// the first trigger. Otherwise the sequence steps by one day, seven days or one
// calendar month from the first trigger and stops at the first instant falling
// after the end date's day.
func Occurrences(r models.Reminder, loc *time.Location) (iter.Seq[time.Time], error) {
	first, err := r.FirstTrigger(loc)
	if err != nil {
		return nil, err
	}

	freq := r.EffectiveFrequency()
	if !freq.IsRecurring() || r.EndDate == "" {
		return func(yield func(time.Time) bool) {
			yield(first)
		}, nil
	}

	limit, err := EndOfDay(r.EndDate, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid end date format: %w", err)
	}

	return func(yield func(time.Time) bool) {
		for t := first; t.Before(limit); t = step(t, freq) {
			if !yield(t) {
				return
			}
		}
	}, nil
}

// step advances t by one period of freq, keeping the wall clock time.
// Monthly steps normalise overflowing days the way time.AddDate does
// (January 31st is followed by March 3rd in a non-leap year).
func step(t time.Time, freq models.Frequency) time.Time {
	switch freq {
	case models.FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// UpcomingTriggers returns the occurrences of r that are not before now.
// Past occurrences are skipped silently.
func UpcomingTriggers(r models.Reminder, loc *time.Location, now time.Time) ([]time.Time, error) {
	seq, err := Occurrences(r, loc)
	if err != nil {
		return nil, err
	}

	var triggers []time.Time
	for t := range seq {
		if t.Before(now) {
			continue
		}
		triggers = append(triggers, t)
	}
	return triggers, nil
}

// CountOccurrences returns the number of instants in the full series of r.
func CountOccurrences(r models.Reminder, loc *time.Location) (int, error) {
	seq, err := Occurrences(r, loc)
	if err != nil {
		return 0, err
	}
	n := 0
	for range seq {
		n++
	}
	return n, nil
}
