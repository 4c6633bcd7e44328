package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/storage"
	"github.com/DarkZangetsu/medcare/internal/storage/postgres"
	"github.com/DarkZangetsu/medcare/internal/storage/sqlite"
	"github.com/DarkZangetsu/medcare/internal/utils"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized medcare storage at: %s\n", ctx.Store.GetConfigPath())

	if ctx.Config != nil && ctx.Config.Timezone != "" {
		if err := applyTimezone(ctx, ctx.Config.Timezone); err != nil {
			return err
		}
	}

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx, c.Source); err != nil {
			return fmt.Errorf("data copy failed: %w", err)
		}
		fmt.Println("Data copied successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if dbPath == "postgresql" {
		return errors.New("--force is not supported for PostgreSQL; drop the database manually")
	}
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func applyTimezone(ctx *cli.Context, tz string) error {
	if !utils.ValidateTimezone(tz) {
		return fmt.Errorf("invalid timezone %q in configuration", tz)
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Timezone == tz {
		return nil
	}
	settings.Timezone = tz
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("Timezone set to %s\n", tz)
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if strings.HasPrefix(source, "postgres://") || strings.HasPrefix(source, "postgresql://") {
		if valid, err := postgres.ValidateConnString(source); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.New("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	}
	return sqlite.NewStore(source), nil
}

func (c *InitCmd) copyData(ctx *cli.Context, source string) error {
	src, err := openSource(source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()
	dst := ctx.Store

	fmt.Println("  Copying settings...")
	settings, err := src.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := dst.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Copying reminders...")
	reminders, err := src.GetAllReminders()
	if err != nil {
		return fmt.Errorf("failed to get reminders from source: %w", err)
	}
	if err := dst.ReplaceReminders(reminders); err != nil {
		return fmt.Errorf("failed to save reminders: %w", err)
	}
	fmt.Printf("    Copied %d reminders\n", len(reminders))

	fmt.Println("  Copying scheduled notifications...")
	pending, err := src.GetPendingNotifications()
	if err != nil {
		return fmt.Errorf("failed to get notifications from source: %w", err)
	}
	for _, n := range pending {
		if err := dst.AddNotification(n); err != nil {
			return fmt.Errorf("failed to add notification %s: %w", n.ID, err)
		}
	}
	fmt.Printf("    Copied %d notifications\n", len(pending))

	fmt.Println("  Copying journal...")
	entries, err := src.GetJournalEntries()
	if err != nil {
		return fmt.Errorf("failed to get journal entries from source: %w", err)
	}
	for _, e := range entries {
		if err := dst.AddJournalEntry(e); err != nil {
			return fmt.Errorf("failed to add journal entry %s: %w", e.ID, err)
		}
	}
	fmt.Printf("    Copied %d journal entries\n", len(entries))

	fmt.Println("  Copying doctors and consultations...")
	doctors, err := src.GetDoctors()
	if err != nil {
		return fmt.Errorf("failed to get doctors from source: %w", err)
	}
	if err := dst.ReplaceDoctors(doctors); err != nil {
		return fmt.Errorf("failed to save doctors: %w", err)
	}
	consultations, err := src.GetConsultations()
	if err != nil {
		return fmt.Errorf("failed to get consultations from source: %w", err)
	}
	for _, cons := range consultations {
		if err := dst.SaveConsultation(cons); err != nil {
			return fmt.Errorf("failed to save consultation %s: %w", cons.ID, err)
		}
		for _, m := range cons.Messages {
			if err := dst.AddMessage(m); err != nil {
				return fmt.Errorf("failed to add message %s: %w", m.ID, err)
			}
		}
		payments, err := src.GetPayments(cons.ID)
		if err != nil {
			return fmt.Errorf("failed to get payments for %s: %w", cons.ID, err)
		}
		for _, p := range payments {
			if err := dst.SavePayment(p); err != nil {
				return fmt.Errorf("failed to save payment %s: %w", p.ID, err)
			}
		}
	}
	fmt.Printf("    Copied %d doctors and %d consultations\n", len(doctors), len(consultations))

	return nil
}
