package system

import (
	"fmt"
	"time"

	"github.com/DarkZangetsu/medcare/internal/cli"
)

type NotifyCmd struct {
	DryRun bool `help:"Print due notifications instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		fmt.Println("Notifications are disabled in settings.")
		return nil
	}

	if c.DryRun {
		due, err := ctx.Store.GetDueNotifications(time.Now())
		if err != nil {
			return fmt.Errorf("failed to get due notifications: %w", err)
		}
		if len(due) == 0 {
			fmt.Println("No notifications due.")
			return nil
		}
		for _, n := range due {
			fmt.Printf("[DryRun] %s  %s: %s\n", n.TriggerAt.Local().Format("2006-01-02 15:04"), n.Title, n.Body)
		}
		return nil
	}

	d, err := ctx.Dispatcher()
	if err != nil {
		return err
	}
	res, err := d.DispatchDue(ctx.Context())
	if err != nil {
		return fmt.Errorf("dispatch failed: %w", err)
	}
	fmt.Printf("Sent %d, expired %d, failed %d notification(s).\n", res.Sent, res.Expired, res.Failed)
	return nil
}
