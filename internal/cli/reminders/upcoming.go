package reminders

import (
	"fmt"

	"github.com/DarkZangetsu/medcare/internal/cli"
)

type UpcomingCmd struct {
	Offline bool `help:"Read the local cache instead of the server."`
}

func (c *UpcomingCmd) Run(ctx *cli.Context) error {
	if err := ctx.LoadReminders(c.Offline); err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}

	upcoming, err := ctx.Reminders.Upcoming()
	if err != nil {
		return err
	}
	if len(upcoming) == 0 {
		fmt.Println("No upcoming reminders.")
		return nil
	}

	fmt.Println("Upcoming reminders:")
	for _, r := range upcoming {
		fmt.Printf("  %s %s  %-12s %s\n", r.Date, r.Time, r.Type.Label(), r.Title)
	}
	return nil
}
