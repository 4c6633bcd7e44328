package reminders

import (
	"sort"
	"time"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/models"
)

// UpcomingReminders returns at most five active reminders whose first trigger,
// computed in now's location, is not before now. Results are ordered by
// trigger instant.
func UpcomingReminders(all []models.Reminder, now time.Time) []models.Reminder {
	return upcoming(all, now, constants.UpcomingLimit)
}

func upcoming(all []models.Reminder, now time.Time, limit int) []models.Reminder {
	type entry struct {
		r models.Reminder
		t time.Time
	}

	var entries []entry
	for _, r := range all {
		if !r.IsActive {
			continue
		}
		t, err := r.FirstTrigger(now.Location())
		if err != nil || t.Before(now) {
			continue
		}
		entries = append(entries, entry{r: r, t: t})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].t.Before(entries[j].t)
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	result := make([]models.Reminder, len(entries))
	for i, e := range entries {
		result[i] = e.r
	}
	return result
}

// FilterByType returns the reminders of type t. An empty type matches all.
func FilterByType(all []models.Reminder, t models.ReminderType) []models.Reminder {
	if t == "" {
		return all
	}
	var result []models.Reminder
	for _, r := range all {
		if r.Type == t {
			result = append(result, r)
		}
	}
	return result
}
