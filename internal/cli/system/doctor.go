package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/DarkZangetsu/medcare/internal/backup"
	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/keyring"
	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/notifier"
	"github.com/DarkZangetsu/medcare/internal/utils"
)

// errSkipped marks a check that does not apply to the current configuration.
var errSkipped = errors.New("not applicable")

type check struct {
	name string
	// needsDB checks are skipped when the database cannot be reached.
	needsDB bool
	// warn checks never fail the run.
	warn bool
	run  func(*cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warn: true, run: checkBackupsPresent},
	{name: "Settings", needsDB: true, run: checkSettings},
	{name: "Reminder cache", needsDB: true, run: checkReminderCache},
	{name: "Scheduled notifications", needsDB: true, warn: true, run: checkNotifications},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", warn: true, run: checkKeyring},
	{name: "Redis queue", run: checkRedis},
	{name: "Tray app", warn: true, run: checkTrayApp},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			fmt.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warn:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if db, ok := ctx.Store.(database); ok {
		if db.GetDB() == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.GetDB().QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func checkMigrationsComplete(ctx *cli.Context) error {
	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run '%s migrate')", current, latest, constants.AppName)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Store.GetConfigPath() == "postgresql" {
		return fmt.Errorf("%w: PostgreSQL backups are managed outside medcare", errSkipped)
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	list, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(list) == 0 {
		return fmt.Errorf("no backups found in %s (run '%s backup create')", mgr.Dir(), constants.AppName)
	}
	if age := time.Since(list[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone %q", settings.Timezone)
	}
	if settings.UpcomingLimit < 1 || settings.UpcomingLimit > constants.UpcomingLimit {
		return fmt.Errorf("upcoming limit %d out of range 1-%d", settings.UpcomingLimit, constants.UpcomingLimit)
	}
	if settings.NotificationGracePeriodMin < 0 {
		return fmt.Errorf("negative grace period %d", settings.NotificationGracePeriodMin)
	}
	return nil
}

func checkReminderCache(ctx *cli.Context) error {
	reminders, err := ctx.Store.GetAllReminders()
	if err != nil {
		return fmt.Errorf("failed to read reminder cache: %w", err)
	}
	var invalid int
	for _, r := range reminders {
		if err := r.Validate(); err != nil {
			invalid++
			continue
		}
		if r.IsActive && len(r.ScheduledIDs()) == 0 {
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d cached reminders are invalid or active without notifications", invalid, len(reminders))
	}
	return nil
}

func checkNotifications(ctx *cli.Context) error {
	pending, err := ctx.Store.GetPendingNotifications()
	if err != nil {
		return fmt.Errorf("failed to read scheduled notifications: %w", err)
	}
	reminders, err := ctx.Store.GetAllReminders()
	if err != nil {
		return fmt.Errorf("failed to read reminder cache: %w", err)
	}
	known := make(map[string]bool, len(reminders))
	for _, r := range reminders {
		known[r.ID] = true
	}

	var orphans, overdue int
	cutoff := time.Now().Add(-time.Hour)
	for _, n := range pending {
		if n.ReminderID != models.TempReminderID && !known[n.ReminderID] {
			orphans++
		}
		if n.TriggerAt.Before(cutoff) {
			overdue++
		}
	}
	if overdue > 0 {
		return fmt.Errorf("%d notification(s) are more than an hour overdue, is the daemon running?", overdue)
	}
	if orphans > 0 {
		return fmt.Errorf("%d notification(s) belong to no cached reminder", orphans)
	}
	return nil
}

func checkClockTimezone(_ *cli.Context) error {
	now := time.Now()
	if now.Year() < 2024 {
		return fmt.Errorf("system clock appears to be wrong (year %d)", now.Year())
	}
	if _, err := time.LoadLocation("Local"); err != nil {
		return fmt.Errorf("failed to load local timezone: %w", err)
	}
	return nil
}

func checkKeyring(_ *cli.Context) error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is unavailable; the API session cannot be stored")
	}
	return nil
}

func checkRedis(ctx *cli.Context) error {
	if ctx.Config == nil || ctx.Config.Notifier.Backend != constants.BackendQueue {
		return fmt.Errorf("%w: notifier backend is %s", errSkipped, constants.BackendLocal)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     ctx.Config.Redis.Addr,
		Password: ctx.Config.Redis.Password,
		DB:       ctx.Config.Redis.DB,
	})
	defer client.Close()

	pingCtx, cancel := context.WithTimeout(ctx.Context(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis at %s unreachable: %w", ctx.Config.Redis.Addr, err)
	}
	return nil
}

func checkTrayApp(ctx *cli.Context) error {
	if ctx.Config == nil || !ctx.Config.HasChannel(constants.ChannelTray) {
		return fmt.Errorf("%w: tray channel disabled", errSkipped)
	}
	dir, err := notifier.GetTrayAppConfigDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, constants.NotifierLockfileName)); err != nil {
		return fmt.Errorf("tray app is not running; desktop notifications will fail")
	}
	return nil
}
