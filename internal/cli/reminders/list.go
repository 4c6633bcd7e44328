package reminders

import (
	"fmt"
	"strings"
	"time"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/reminders"
	"github.com/DarkZangetsu/medcare/internal/utils"
)

type ListCmd struct {
	Type    string `help:"Only show reminders of this type (medication|appointment|analysis)."`
	Offline bool   `help:"Read the local cache instead of the server."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if err := ctx.LoadReminders(c.Offline); err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}

	list := ctx.Reminders.Reminders()
	if c.Type != "" {
		list = reminders.FilterByType(list, models.ReminderType(c.Type))
	}
	if len(list) == 0 {
		fmt.Println("No reminders configured.")
		return nil
	}

	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	printTable(list, loc, time.Now())
	return nil
}

func printTable(list []models.Reminder, loc *time.Location, now time.Time) {
	fmt.Printf("%-26s %-12s %-28s %-11s %-6s %-28s %-6s %-6s\n", "ID", "Type", "Title", "Date", "Time", "Frequency", "Left", "Active")
	fmt.Println(strings.Repeat("-", 129))
	for _, r := range list {
		active := "yes"
		if !r.IsActive {
			active = "no"
		}
		fmt.Printf("%-26s %-12s %-28s %-11s %-6s %-28s %-6s %-6s\n",
			r.ID, r.Type.Label(), truncate(r.Title, 28), r.Date, r.Time, r.FormatFrequency(), occurrencesLeft(r, loc, now), active)
	}
}

// occurrencesLeft renders the occurrences still ahead of now out of the whole
// series, e.g. "2/3".
func occurrencesLeft(r models.Reminder, loc *time.Location, now time.Time) string {
	total, err := utils.CountOccurrences(r, loc)
	if err != nil {
		return "?"
	}
	left, err := utils.UpcomingTriggers(r, loc, now)
	if err != nil {
		return "?"
	}
	return fmt.Sprintf("%d/%d", len(left), total)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
