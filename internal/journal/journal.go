// Package journal keeps the patient's health journal. Entries live only in
// the local store.
package journal

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/storage"
)

type Journal struct {
	mu      sync.Mutex
	store   storage.Provider
	now     func() time.Time
	entries []models.JournalEntry // newest first
}

func New(store storage.Provider) *Journal {
	return &Journal{store: store, now: time.Now}
}

func (j *Journal) Load() error {
	entries, err := j.store.GetJournalEntries()
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.entries = entries
	j.mu.Unlock()
	return nil
}

func (j *Journal) Close() error {
	j.mu.Lock()
	j.entries = nil
	j.mu.Unlock()
	return nil
}

// Add validates e, assigns its id and creation time, and stores it.
func (j *Journal) Add(e models.JournalEntry) (models.JournalEntry, error) {
	if err := e.Validate(); err != nil {
		return models.JournalEntry{}, apperrors.Invalid(err)
	}
	e.ID = uuid.New().String()
	e.CreatedAt = j.now()

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.store.AddJournalEntry(e); err != nil {
		return models.JournalEntry{}, err
	}
	j.entries = slices.Insert(j.entries, 0, e)
	logger.Debug("Journal entry added", "id", e.ID, "type", e.Type)
	return e, nil
}

func (j *Journal) Delete(id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	i := slices.IndexFunc(j.entries, func(e models.JournalEntry) bool { return e.ID == id })
	if i < 0 {
		return apperrors.NotFound("journal entry", id)
	}
	if err := j.store.DeleteJournalEntry(id); err != nil {
		return err
	}
	j.entries = slices.Delete(j.entries, i, i+1)
	return nil
}

// Entries returns all entries, newest first.
func (j *Journal) Entries() []models.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.entries)
}

func (j *Journal) ByDate(date string) []models.JournalEntry {
	return j.filter(func(e models.JournalEntry) bool { return e.Date == date })
}

func (j *Journal) ByType(t models.EntryType) []models.JournalEntry {
	return j.filter(func(e models.JournalEntry) bool { return e.Type == t })
}

func (j *Journal) filter(keep func(models.JournalEntry) bool) []models.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []models.JournalEntry
	for _, e := range j.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
