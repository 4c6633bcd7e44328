// Package reminders owns the reminder set: it expands reminders into
// scheduled notifications and keeps those notifications consistent with the
// reminder state held remotely and in the local cache.
package reminders

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/DarkZangetsu/medcare/internal/constants"
	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/notifier"
	"github.com/DarkZangetsu/medcare/internal/storage"
	"github.com/DarkZangetsu/medcare/internal/utils"
)

// RemoteStore is the server side source of truth for reminders.
type RemoteStore interface {
	ListReminders(ctx context.Context) ([]models.Reminder, error)
	CreateReminder(ctx context.Context, r models.Reminder) (models.Reminder, error)
	UpdateReminder(ctx context.Context, id string, patch models.ReminderPatch) (models.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
}

// Manager holds the in-memory reminder set. Mutations run one at a time.
type Manager struct {
	mu        sync.Mutex
	remote    RemoteStore
	scheduler notifier.Scheduler
	store     storage.Provider
	now       func() time.Time
	reminders []models.Reminder
}

func NewManager(remote RemoteStore, scheduler notifier.Scheduler, store storage.Provider) *Manager {
	return &Manager{
		remote:    remote,
		scheduler: scheduler,
		store:     store,
		now:       time.Now,
	}
}

// Load replaces the reminder set with the server's list. Notification
// identifiers known only locally are carried over from the cache.
func (m *Manager) Load(ctx context.Context) error {
	remote, err := m.remote.ListReminders(ctx)
	if err != nil {
		return err
	}

	cached, err := m.store.GetAllReminders()
	if err != nil {
		logger.Warn("Failed to read reminder cache", "error", err)
	}
	byID := make(map[string]models.Reminder, len(cached))
	for _, r := range cached {
		byID[r.ID] = r
	}
	for i, r := range remote {
		c, ok := byID[r.ID]
		if ok && len(c.NotificationIDs) > 0 && c.NotificationIDs[0] == r.NotificationID {
			remote[i].NotificationIDs = c.NotificationIDs
		}
	}

	if err := m.store.ReplaceReminders(remote); err != nil {
		logger.Warn("Failed to refresh reminder cache", "error", err)
	}

	m.mu.Lock()
	m.reminders = remote
	m.mu.Unlock()
	logger.Debug("Reminders loaded", "count", len(remote))
	return nil
}

// LoadCached restores the reminder set from the local cache.
func (m *Manager) LoadCached() error {
	cached, err := m.store.GetAllReminders()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.reminders = cached
	m.mu.Unlock()
	return nil
}

// Reminders returns a copy of the current set.
func (m *Manager) Reminders() []models.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.reminders)
}

// Get returns the reminder with the given id.
func (m *Manager) Get(id string) (models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return models.Reminder{}, apperrors.NotFound("reminder", id)
	}
	return m.reminders[i], nil
}

// Upcoming returns the next active reminders in the configured timezone.
func (m *Manager) Upcoming() ([]models.Reminder, error) {
	settings, loc, err := m.settings()
	if err != nil {
		return nil, err
	}
	limit := settings.UpcomingLimit
	if limit <= 0 || limit > constants.UpcomingLimit {
		limit = constants.UpcomingLimit
	}
	return upcoming(m.Reminders(), m.now().In(loc), limit), nil
}

// Close drops the in-memory set.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.reminders = nil
	m.mu.Unlock()
	return nil
}

// ScheduleReminder registers one notification per upcoming occurrence of r
// and returns the identifier of the first one.
func (m *Manager) ScheduleReminder(ctx context.Context, r models.Reminder) (string, error) {
	ids, err := m.schedule(ctx, r)
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// CancelNotification cancels a scheduled notification. Unknown identifiers are ignored.
func (m *Manager) CancelNotification(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.scheduler.Cancel(ctx, id)
}

// CreateReminder schedules r, persists it remotely with the first
// notification identifier and adds it to the set. Notifications are
// cancelled again if the server rejects the reminder.
func (m *Manager) CreateReminder(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	if err := r.Validate(); err != nil {
		return models.Reminder{}, apperrors.Invalid(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = models.TempReminderID
	r.IsActive = true
	r.Frequency = r.EffectiveFrequency()

	ids, err := m.schedule(ctx, r)
	if err != nil {
		return models.Reminder{}, err
	}
	r.NotificationID = ids[0]

	created, err := m.remote.CreateReminder(ctx, r)
	if err != nil {
		m.cancelIDs(ctx, ids)
		return models.Reminder{}, err
	}
	created.NotificationIDs = ids
	if created.NotificationID == "" {
		created.NotificationID = ids[0]
	}

	m.reminders = append(m.reminders, created)
	m.cache(created)
	logger.Info("Reminder created", "id", created.ID, "notifications", len(ids))
	return created, nil
}

// UpdateReminder applies patch remotely. Active reminders whose schedule
// changes get a fresh notification series; the old one is cancelled once
// the server has accepted the change.
func (m *Manager) UpdateReminder(ctx context.Context, id string, patch models.ReminderPatch) (models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return models.Reminder{}, apperrors.NotFound("reminder", id)
	}
	current := m.reminders[i]
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return models.Reminder{}, apperrors.Invalid(err)
	}

	reschedule := next.IsActive && (!current.IsActive || patch.AffectsSchedule())
	dropOld := current.IsActive && (!next.IsActive || patch.AffectsSchedule())

	var ids []string
	if reschedule {
		var err error
		if ids, err = m.schedule(ctx, next); err != nil {
			return models.Reminder{}, err
		}
		patch.NotificationID = &ids[0]
	} else if dropOld {
		empty := ""
		patch.NotificationID = &empty
	}

	updated, err := m.remote.UpdateReminder(ctx, id, patch)
	if err != nil {
		m.cancelIDs(ctx, ids)
		return models.Reminder{}, err
	}

	switch {
	case reschedule:
		updated.NotificationIDs = ids
	case dropOld:
		updated.NotificationIDs = nil
	default:
		updated.NotificationIDs = current.NotificationIDs
	}
	if dropOld {
		m.cancelIDs(ctx, current.ScheduledIDs())
	}

	m.reminders[i] = updated
	m.cache(updated)
	return updated, nil
}

// ToggleReminder flips the active state of r. Deactivation cancels its
// notifications, activation schedules a new series. The notification side
// completes before the new state is persisted; on failure the reminder keeps
// its previous state, with its remaining occurrences scheduled again when it
// was active.
func (m *Manager) ToggleReminder(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(r.ID)
	if i < 0 {
		return models.Reminder{}, apperrors.NotFound("reminder", r.ID)
	}
	current := m.reminders[i]

	var (
		ids    []string
		active bool
		patch  models.ReminderPatch
	)
	if current.IsActive {
		if err := m.cancelStrict(ctx, current.ScheduledIDs()); err != nil {
			return models.Reminder{}, err
		}
		empty := ""
		patch = models.ReminderPatch{IsActive: &active, NotificationID: &empty}
	} else {
		active = true
		var err error
		if ids, err = m.schedule(ctx, current); err != nil {
			return models.Reminder{}, err
		}
		patch = models.ReminderPatch{IsActive: &active, NotificationID: &ids[0]}
	}

	updated, err := m.remote.UpdateReminder(ctx, current.ID, patch)
	if err != nil {
		if active {
			m.cancelIDs(ctx, ids)
		} else {
			m.reminders[i] = m.restore(ctx, current)
		}
		return models.Reminder{}, err
	}
	updated.IsActive = active
	updated.NotificationIDs = ids
	if active {
		updated.NotificationID = ids[0]
	} else {
		updated.NotificationID = ""
	}

	m.reminders[i] = updated
	m.cache(updated)
	logger.Info("Reminder toggled", "id", updated.ID, "active", active)
	return updated, nil
}

// DeleteReminder cancels the notifications of r, best effort, and removes it
// remotely, from the cache and from the set. When the server refuses, the
// remaining occurrences of an active reminder are scheduled again.
func (m *Manager) DeleteReminder(ctx context.Context, r models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(r.ID)
	if i < 0 {
		return apperrors.NotFound("reminder", r.ID)
	}
	current := m.reminders[i]
	m.cancelIDs(ctx, current.ScheduledIDs())

	if err := m.remote.DeleteReminder(ctx, current.ID); err != nil {
		if current.IsActive {
			m.reminders[i] = m.restore(ctx, current)
		}
		return err
	}
	if err := m.store.DeleteReminder(current.ID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Warn("Failed to remove reminder from cache", "id", current.ID, "error", err)
	}
	m.reminders = slices.Delete(m.reminders, i, i+1)
	logger.Info("Reminder deleted", "id", current.ID)
	return nil
}

func (m *Manager) schedule(ctx context.Context, r models.Reminder) ([]string, error) {
	settings, loc, err := m.settings()
	if err != nil {
		return nil, err
	}
	if !settings.NotificationsEnabled {
		return nil, &apperrors.PermissionDeniedError{Reason: "notifications are disabled in settings"}
	}

	now := m.now().In(loc)
	first, err := r.FirstTrigger(loc)
	if err != nil {
		return nil, apperrors.Invalid(err)
	}
	if !first.After(now) {
		return nil, &apperrors.InvalidScheduleError{Trigger: first, Now: now}
	}

	ids, err := m.register(ctx, r, loc, now)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &apperrors.InvalidScheduleError{
			Trigger: first,
			Now:     now,
			Reason:  "end date " + r.EndDate + " is before the first occurrence on " + r.Date,
		}
	}
	logger.Debug("Reminder scheduled", "id", r.ID, "first", first, "count", len(ids))
	return ids, nil
}

// register schedules every occurrence of r not before now. A failure cancels
// the part of the series already registered.
func (m *Manager) register(ctx context.Context, r models.Reminder, loc *time.Location, now time.Time) ([]string, error) {
	triggers, err := utils.UpcomingTriggers(r, loc, now)
	if err != nil {
		return nil, apperrors.Invalid(err)
	}

	ids := make([]string, 0, len(triggers))
	for _, t := range triggers {
		id, err := m.scheduler.ScheduleAt(ctx, notifier.Notification{
			Title:     r.NotificationTitle(),
			Body:      r.NotificationBody(),
			TriggerAt: t,
			Data:      map[string]string{notifier.DataReminderID: r.ID},
		})
		if err != nil {
			m.cancelIDs(ctx, ids)
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// restore re-registers the remaining occurrences of an active reminder whose
// notifications were cancelled before the server refused the change. Old
// identifiers are cancelled first so a partially cancelled series is not
// duplicated. Past occurrences stay skipped.
func (m *Manager) restore(ctx context.Context, r models.Reminder) models.Reminder {
	m.cancelIDs(ctx, r.ScheduledIDs())

	var ids []string
	_, loc, err := m.settings()
	if err == nil {
		ids, err = m.register(ctx, r, loc, m.now().In(loc))
	}
	if err != nil {
		logger.Warn("Failed to restore reminder notifications", "id", r.ID, "error", err)
	}

	r.NotificationIDs = ids
	r.NotificationID = ""
	if len(ids) > 0 {
		r.NotificationID = ids[0]
	}
	m.cache(r)
	logger.Info("Reminder notifications restored", "id", r.ID, "count", len(ids))
	return r
}

// cancelIDs cancels every id, logging failures.
func (m *Manager) cancelIDs(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := m.CancelNotification(ctx, id); err != nil {
			logger.Warn("Failed to cancel notification", "id", id, "error", err)
		}
	}
}

// cancelStrict cancels every id and reports all failures.
func (m *Manager) cancelStrict(ctx context.Context, ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := m.CancelNotification(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) cache(r models.Reminder) {
	if err := m.store.SaveReminder(r); err != nil {
		logger.Warn("Failed to cache reminder", "id", r.ID, "error", err)
	}
}

func (m *Manager) indexOf(id string) int {
	return slices.IndexFunc(m.reminders, func(r models.Reminder) bool { return r.ID == id })
}

func (m *Manager) settings() (models.Settings, *time.Location, error) {
	settings, err := m.store.GetSettings()
	if err != nil {
		return models.Settings{}, nil, err
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return models.Settings{}, nil, apperrors.Invalid(err)
	}
	return settings, loc, nil
}
