package utils

import (
	"fmt"
	"time"

	"github.com/DarkZangetsu/medcare/internal/constants"
)

// LoadLocation resolves an IANA zone name. Empty and "Local" mean the
// system zone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// GetTodayInTimezone returns today as YYYY-MM-DD in timezone.
func GetTodayInTimezone(timezone string) (string, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return "", err
	}
	return time.Now().In(loc).Format(constants.DateFormat), nil
}

// ParseDateInLocation returns midnight of a YYYY-MM-DD date in loc.
func ParseDateInLocation(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(constants.DateFormat, date, loc)
}

// EndOfDay returns midnight of the day after date in loc, the exclusive
// bound for instants falling on date.
func EndOfDay(date string, loc *time.Location) (time.Time, error) {
	day, err := ParseDateInLocation(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.AddDate(0, 0, 1), nil
}
