package settings

import (
	"fmt"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	NotificationsEnabled *bool   `help:"Allow reminders to schedule notifications."`
	Timezone             *string `help:"IANA timezone used to compute reminder triggers."`
	UpcomingLimit        *int    `help:"Number of reminders shown as upcoming (1-5)."`
	GracePeriodMin       *int    `help:"Minutes a late notification may still be delivered."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Timezone:              %s\n", settings.Timezone)
		fmt.Printf("  Upcoming Limit:        %d\n", settings.UpcomingLimit)
		fmt.Println("\nNotification Settings:")
		fmt.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		fmt.Printf("  Grace Period:          %d min\n", settings.NotificationGracePeriodMin)
		return nil
	}

	updated := false
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.UpcomingLimit != nil {
		if *c.UpcomingLimit < 1 || *c.UpcomingLimit > constants.UpcomingLimit {
			return fmt.Errorf("upcoming limit must be between 1 and %d", constants.UpcomingLimit)
		}
		settings.UpcomingLimit = *c.UpcomingLimit
		updated = true
	}
	if c.GracePeriodMin != nil {
		if *c.GracePeriodMin < 0 {
			return fmt.Errorf("grace period cannot be negative")
		}
		settings.NotificationGracePeriodMin = *c.GracePeriodMin
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Println("Settings updated successfully.")
	} else {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
