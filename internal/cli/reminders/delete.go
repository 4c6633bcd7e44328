package reminders

import (
	"fmt"

	"github.com/DarkZangetsu/medcare/internal/cli"
)

type DeleteCmd struct {
	ID      string `arg:"" help:"Reminder ID."`
	Offline bool   `help:"Resolve the reminder from the local cache."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.LoadReminders(c.Offline); err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}

	r, err := ctx.Reminders.Get(c.ID)
	if err != nil {
		return err
	}

	if err := ctx.Reminders.DeleteReminder(ctx.Context(), r); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	fmt.Printf("✓ Reminder deleted: %s\n", r.Title)
	return nil
}
