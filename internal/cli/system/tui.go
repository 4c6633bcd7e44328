package system

import (
	"fmt"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	if err := tui.Run(ctx.Context(), ctx.Reminders, ctx.Journal); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
