// Package documents downloads consultation PDFs into the documents directory.
package documents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/models"
)

type Downloader struct {
	client *http.Client
	dir    string
}

func NewDownloader(dir string, timeout time.Duration) *Downloader {
	return &Downloader{client: &http.Client{Timeout: timeout}, dir: dir}
}

// FileName is the local name of a consultation PDF downloaded on day.
func FileName(consultationID string, day time.Time) string {
	return fmt.Sprintf("consultation_%s_%s.pdf", consultationID, day.Format("20060102"))
}

// Download fetches url and stores it as name in the documents directory.
// It returns the local path of the file.
func (d *Downloader) Download(ctx context.Context, url, name string) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return "", fmt.Errorf("invalid PDF file name %q", name)
	}
	if err := os.MkdirAll(d.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create documents directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	res, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download PDF: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download PDF: server returned %d", res.StatusCode)
	}

	dest := filepath.Join(d.dir, name)
	tmp, err := os.CreateTemp(d.dir, name+".*.part")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, res.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("failed to save PDF: %w", err)
	}
	logger.Info("PDF downloaded", "path", dest)
	return dest, nil
}

// List returns the PDFs already downloaded, newest first.
func (d *Downloader) List() ([]models.MedicalPDF, error) {
	entries, err := os.ReadDir(d.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var pdfs []models.MedicalPDF
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		pdfs = append(pdfs, models.MedicalPDF{
			ID:             strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			ConsultationID: consultationOf(e.Name()),
			FileName:       e.Name(),
			FileURI:        filepath.Join(d.dir, e.Name()),
			CreatedAt:      info.ModTime(),
		})
	}
	for i := 1; i < len(pdfs); i++ {
		for j := i; j > 0 && pdfs[j].CreatedAt.After(pdfs[j-1].CreatedAt); j-- {
			pdfs[j], pdfs[j-1] = pdfs[j-1], pdfs[j]
		}
	}
	return pdfs, nil
}

// consultationOf extracts the id from "consultation_<id>_<yyyymmdd>.pdf".
func consultationOf(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(base, "consultation_") {
		return ""
	}
	base = strings.TrimPrefix(base, "consultation_")
	if i := strings.LastIndex(base, "_"); i > 0 {
		return base[:i]
	}
	return base
}
