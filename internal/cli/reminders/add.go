package reminders

import (
	"fmt"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/models"
)

type AddCmd struct {
	Title       string `arg:"" help:"Reminder title."`
	Type        string `help:"Reminder type (medication|appointment|analysis)." default:"medication" enum:"medication,appointment,analysis"`
	Date        string `help:"First date (YYYY-MM-DD)." required:""`
	Time        string `help:"Time of day (HH:MM)." required:""`
	Frequency   string `help:"Repetition (once|daily|weekly|monthly)." default:"once" enum:"once,daily,weekly,monthly"`
	EndDate     string `help:"Last date of a recurring reminder (YYYY-MM-DD)."`
	Description string `help:"Text shown in the notification body."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	r := models.Reminder{
		Type:        models.ReminderType(c.Type),
		Title:       c.Title,
		Description: c.Description,
		Date:        c.Date,
		Time:        c.Time,
		Frequency:   models.Frequency(c.Frequency),
		EndDate:     c.EndDate,
	}

	created, err := ctx.Reminders.CreateReminder(ctx.Context(), r)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	fmt.Printf("✓ Reminder added: %s at %s (%s)\n", created.Title, created.Time, created.FormatFrequency())
	fmt.Printf("  %d notification(s) scheduled\n", len(created.ScheduledIDs()))
	return nil
}
