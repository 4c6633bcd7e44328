package journal

import (
	"fmt"
	"strings"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/utils"
)

type NoteCmd struct {
	Content string `arg:"" help:"Note text."`
	Date    string `help:"Entry date (YYYY-MM-DD), defaults to today."`
}

func (c *NoteCmd) Run(ctx *cli.Context) error {
	return add(ctx, models.JournalEntry{
		Date:    c.Date,
		Type:    models.EntryNote,
		Content: c.Content,
	})
}

type MeasureCmd struct {
	Kind  string  `arg:"" help:"Measurement (glycemia|blood_pressure|weight|temperature|other)." enum:"glycemia,blood_pressure,weight,temperature,other"`
	Value float64 `arg:"" help:"Measured value."`
	Unit  string  `help:"Unit of the value (e.g. g/L, kg)."`
	Note  string  `help:"Optional comment."`
	Date  string  `help:"Entry date (YYYY-MM-DD), defaults to today."`
}

func (c *MeasureCmd) Run(ctx *cli.Context) error {
	value := c.Value
	return add(ctx, models.JournalEntry{
		Date:             c.Date,
		Type:             models.EntryMeasurement,
		Content:          c.Note,
		MeasurementType:  models.MeasurementType(c.Kind),
		MeasurementValue: &value,
		MeasurementUnit:  c.Unit,
	})
}

type PhotoCmd struct {
	URI  string `arg:"" help:"Location of the photo."`
	Note string `help:"Optional comment."`
	Date string `help:"Entry date (YYYY-MM-DD), defaults to today."`
}

func (c *PhotoCmd) Run(ctx *cli.Context) error {
	return add(ctx, models.JournalEntry{
		Date:     c.Date,
		Type:     models.EntryPhoto,
		Content:  c.Note,
		PhotoURI: c.URI,
	})
}

func add(ctx *cli.Context, e models.JournalEntry) error {
	if e.Date == "" {
		settings, err := ctx.Store.GetSettings()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		today, err := utils.GetTodayInTimezone(settings.Timezone)
		if err != nil {
			return err
		}
		e.Date = today
	}

	if err := ctx.Journal.Load(); err != nil {
		return fmt.Errorf("failed to load journal: %w", err)
	}
	added, err := ctx.Journal.Add(e)
	if err != nil {
		return fmt.Errorf("failed to add journal entry: %w", err)
	}

	fmt.Printf("✓ Journal entry added for %s: %s\n", added.Date, added.Summary())
	return nil
}

type ListCmd struct {
	Date string `help:"Only show entries of this day (YYYY-MM-DD)."`
	Type string `help:"Only show entries of this type (note|measurement|photo)."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Journal.Load(); err != nil {
		return fmt.Errorf("failed to load journal: %w", err)
	}

	var entries []models.JournalEntry
	switch {
	case c.Date != "":
		entries = ctx.Journal.ByDate(c.Date)
	case c.Type != "":
		entries = ctx.Journal.ByType(models.EntryType(c.Type))
	default:
		entries = ctx.Journal.Entries()
	}
	if c.Date != "" && c.Type != "" {
		kept := entries[:0]
		for _, e := range entries {
			if e.Type == models.EntryType(c.Type) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	if len(entries) == 0 {
		fmt.Println("No journal entries.")
		return nil
	}

	fmt.Printf("%-36s %-11s %-12s %s\n", "ID", "Date", "Type", "Entry")
	fmt.Println(strings.Repeat("-", 90))
	for _, e := range entries {
		fmt.Printf("%-36s %-11s %-12s %s\n", e.ID, e.Date, e.Type, e.Summary())
	}
	return nil
}

type DeleteCmd struct {
	ID string `arg:"" help:"Journal entry ID."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Journal.Load(); err != nil {
		return fmt.Errorf("failed to load journal: %w", err)
	}
	if err := ctx.Journal.Delete(c.ID); err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	fmt.Printf("✓ Journal entry deleted: %s\n", c.ID)
	return nil
}
