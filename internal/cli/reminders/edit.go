package reminders

import (
	"fmt"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/models"
)

type EditCmd struct {
	ID          string  `arg:"" help:"Reminder ID."`
	Title       *string `help:"New title."`
	Type        *string `help:"New type (medication|appointment|analysis)."`
	Description *string `help:"New notification text."`
	Date        *string `help:"New first date (YYYY-MM-DD)."`
	Time        *string `help:"New time of day (HH:MM)."`
	Frequency   *string `help:"New repetition (once|daily|weekly|monthly)."`
	EndDate     *string `help:"New end date, empty to clear."`
	Offline     bool    `help:"Resolve the reminder from the local cache."`
}

func (c *EditCmd) patch() (models.ReminderPatch, bool) {
	var p models.ReminderPatch
	changed := false
	if c.Title != nil {
		p.Title = c.Title
		changed = true
	}
	if c.Type != nil {
		t := models.ReminderType(*c.Type)
		p.Type = &t
		changed = true
	}
	if c.Description != nil {
		p.Description = c.Description
		changed = true
	}
	if c.Date != nil {
		p.Date = c.Date
		changed = true
	}
	if c.Time != nil {
		p.Time = c.Time
		changed = true
	}
	if c.Frequency != nil {
		f := models.Frequency(*c.Frequency)
		p.Frequency = &f
		changed = true
	}
	if c.EndDate != nil {
		p.EndDate = c.EndDate
		changed = true
	}
	return p, changed
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	patch, changed := c.patch()
	if !changed {
		fmt.Println("No changes specified.")
		return nil
	}

	if err := ctx.LoadReminders(c.Offline); err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}

	updated, err := ctx.Reminders.UpdateReminder(ctx.Context(), c.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	fmt.Printf("✓ Reminder updated: %s at %s (%s)\n", updated.Title, updated.Time, updated.FormatFrequency())
	return nil
}
