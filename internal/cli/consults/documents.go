package consults

import (
	"fmt"
	"strings"
	"time"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/documents"
)

type PdfCmd struct {
	ID  string `arg:"" help:"Consultation ID."`
	URL string `help:"Address of the PDF report." required:""`
}

func (c *PdfCmd) Run(ctx *cli.Context) error {
	path, err := ctx.Documents.Download(ctx.Context(), c.URL, documents.FileName(c.ID, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to download report: %w", err)
	}
	fmt.Printf("✓ Report saved to %s\n", path)
	return nil
}

type DocumentsCmd struct{}

func (c *DocumentsCmd) Run(ctx *cli.Context) error {
	docs, err := ctx.Documents.List()
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		fmt.Println("No medical documents.")
		return nil
	}
	for _, d := range docs {
		fmt.Printf("%s  %-26s %s\n", d.CreatedAt.Local().Format("2006-01-02 15:04"), d.ConsultationID, d.FileURI)
	}
	return nil
}

type TriageCmd struct {
	Symptoms []string `arg:"" help:"Describe the symptoms."`
}

func (c *TriageCmd) Run(ctx *cli.Context) error {
	result, err := ctx.API.AITriage(ctx.Context(), strings.Join(c.Symptoms, " "))
	if err != nil {
		return fmt.Errorf("triage failed: %w", err)
	}

	fmt.Printf("Severity:       %s\n", result.Severity)
	fmt.Printf("Advice:         %s\n", result.Advice)
	fmt.Printf("Recommendation: %s\n", result.Recommendation)
	return nil
}
