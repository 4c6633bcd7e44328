package consults

import (
	"fmt"
	"strings"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/models"
)

type DoctorsCmd struct {
	Offline bool `help:"Read the local cache instead of the server."`
}

func (c *DoctorsCmd) Run(ctx *cli.Context) error {
	var (
		doctors []models.Doctor
		err     error
	)
	if !c.Offline {
		doctors, err = ctx.Consultations.RefreshDoctors(ctx.Context())
		if err != nil {
			logger.Warn("Using cached doctors", "error", err)
			fmt.Printf("⚠ Server unreachable, showing cached doctors (%v)\n", err)
		}
	}
	if c.Offline || err != nil {
		if doctors, err = ctx.Consultations.Doctors(); err != nil {
			return fmt.Errorf("failed to get doctors: %w", err)
		}
	}

	if len(doctors) == 0 {
		fmt.Println("No doctors available.")
		return nil
	}

	fmt.Printf("%-26s %-26s %-20s %10s %-7s %s\n", "ID", "Name", "Specialty", "Price", "Online", "Rating")
	fmt.Println(strings.Repeat("-", 100))
	for _, d := range doctors {
		online := "no"
		if d.IsOnline {
			online = "yes"
		}
		rating := "-"
		if d.Rating != nil {
			rating = fmt.Sprintf("%.1f", *d.Rating)
		}
		fmt.Printf("%-26s %-26s %-20s %10.0f %-7s %s\n", d.ID, d.Name, d.Specialty, d.Price, online, rating)
	}
	return nil
}
