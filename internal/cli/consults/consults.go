package consults

import (
	"fmt"
	"strings"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/models"
)

type StartCmd struct {
	DoctorID string `arg:"" help:"Doctor ID."`
}

func (c *StartCmd) Run(ctx *cli.Context) error {
	consultation, err := ctx.Consultations.Start(ctx.Context(), c.DoctorID)
	if err != nil {
		return fmt.Errorf("failed to start consultation: %w", err)
	}
	fmt.Printf("✓ Consultation %s started with %s (%s)\n", consultation.ID, consultation.Doctor.Name, consultation.Status)
	return nil
}

type ListCmd struct {
	Offline bool `help:"Read the local cache instead of the server."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if !c.Offline {
		if err := ctx.Consultations.Load(ctx.Context()); err != nil {
			logger.Warn("Using cached consultations", "error", err)
			fmt.Printf("⚠ Server unreachable, showing cached consultations (%v)\n", err)
		}
	}

	list, err := ctx.Consultations.Consultations()
	if err != nil {
		return fmt.Errorf("failed to get consultations: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No consultations.")
		return nil
	}

	fmt.Printf("%-26s %-26s %-10s %-17s %s\n", "ID", "Doctor", "Status", "Updated", "Messages")
	fmt.Println(strings.Repeat("-", 95))
	for _, cons := range list {
		fmt.Printf("%-26s %-26s %-10s %-17s %d\n",
			cons.ID, cons.Doctor.Name, cons.Status,
			cons.UpdatedAt.Local().Format(constants.DateFormat+" "+constants.TimeFormat), len(cons.Messages))
	}
	return nil
}

type ShowCmd struct {
	ID string `arg:"" help:"Consultation ID."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	cons, err := ctx.Consultations.Consultation(c.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Consultation %s with %s (%s)\n", cons.ID, cons.Doctor.Name, cons.Doctor.Specialty)
	fmt.Printf("Status: %s\n\n", cons.Status)
	for _, m := range cons.Messages {
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Local().Format(constants.TimeFormat), m.SenderType, messageText(m))
	}

	payments, err := ctx.Consultations.Payments(cons.ID)
	if err != nil {
		return fmt.Errorf("failed to get payments: %w", err)
	}
	if len(payments) > 0 {
		fmt.Println("\nPayments:")
		for _, p := range payments {
			fmt.Printf("  %.0f Ar via %s: %s\n", p.Amount, p.Operator.Name(), p.Status)
		}
	}
	return nil
}

func messageText(m models.Message) string {
	var parts []string
	if m.Content != "" {
		parts = append(parts, m.Content)
	}
	if m.PhotoURI != "" {
		parts = append(parts, "[photo] "+m.PhotoURI)
	}
	if m.AudioURI != "" {
		parts = append(parts, "[audio] "+m.AudioURI)
	}
	return strings.Join(parts, " ")
}

type MessageCmd struct {
	ID      string `arg:"" help:"Consultation ID."`
	Content string `arg:"" optional:"" help:"Message text."`
	Photo   string `help:"Attach a photo."`
	Audio   string `help:"Attach a voice message."`
}

func (c *MessageCmd) Run(ctx *cli.Context) error {
	sent, err := ctx.Consultations.SendMessage(ctx.Context(), models.Message{
		ConsultationID: c.ID,
		Content:        c.Content,
		PhotoURI:       c.Photo,
		AudioURI:       c.Audio,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	fmt.Printf("✓ Message sent (%s)\n", sent.ID)
	return nil
}

type StatusCmd struct {
	ID     string `arg:"" help:"Consultation ID."`
	Status string `arg:"" help:"New status (pending|active|completed|cancelled)." enum:"pending,active,completed,cancelled"`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	cons, err := ctx.Consultations.UpdateStatus(ctx.Context(), c.ID, models.ConsultationStatus(c.Status))
	if err != nil {
		return fmt.Errorf("failed to update consultation: %w", err)
	}
	fmt.Printf("✓ Consultation %s is now %s\n", cons.ID, cons.Status)
	return nil
}

type PayCmd struct {
	ID       string  `arg:"" help:"Consultation ID."`
	Operator string  `help:"Mobile money operator (mvola|orange|airtel)." required:"" enum:"mvola,orange,airtel"`
	Amount   float64 `help:"Amount in Ariary, defaults to the doctor's price."`
}

func (c *PayCmd) Run(ctx *cli.Context) error {
	p, err := ctx.Consultations.InitiatePayment(ctx.Context(), c.ID, models.Operator(c.Operator), c.Amount)
	if err != nil {
		return fmt.Errorf("failed to initiate payment: %w", err)
	}
	fmt.Printf("✓ Payment of %.0f Ar via %s: %s\n", p.Amount, p.Operator.Name(), p.Status)
	if p.TransactionID != "" {
		fmt.Printf("  Transaction: %s\n", p.TransactionID)
	}
	return nil
}
