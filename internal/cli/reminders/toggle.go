package reminders

import (
	"fmt"

	"github.com/DarkZangetsu/medcare/internal/cli"
)

type ToggleCmd struct {
	ID      string `arg:"" help:"Reminder ID."`
	Offline bool   `help:"Resolve the reminder from the local cache."`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	if err := ctx.LoadReminders(c.Offline); err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}

	r, err := ctx.Reminders.Get(c.ID)
	if err != nil {
		return err
	}

	updated, err := ctx.Reminders.ToggleReminder(ctx.Context(), r)
	if err != nil {
		return fmt.Errorf("failed to toggle reminder: %w", err)
	}

	if updated.IsActive {
		fmt.Printf("✓ Reminder enabled: %s (%d notification(s) scheduled)\n", updated.Title, len(updated.ScheduledIDs()))
	} else {
		fmt.Printf("✓ Reminder disabled: %s\n", updated.Title)
	}
	return nil
}
