package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/storage"
)

// LocalScheduler keeps scheduled notifications in the local store. The
// daemon's dispatch loop delivers them when they come due.
type LocalScheduler struct {
	store storage.Provider
	now   func() time.Time
}

func NewLocalScheduler(store storage.Provider) *LocalScheduler {
	return &LocalScheduler{store: store, now: time.Now}
}

func (l *LocalScheduler) ScheduleAt(ctx context.Context, n Notification) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sn := models.ScheduledNotification{
		ID:         uuid.New().String(),
		ReminderID: n.Data[DataReminderID],
		Title:      n.Title,
		Body:       n.Body,
		TriggerAt:  n.TriggerAt,
		Status:     models.NotificationScheduled,
		CreatedAt:  l.now(),
	}
	if err := l.store.AddNotification(sn); err != nil {
		return "", fmt.Errorf("schedule notification: %w", err)
	}
	return sn.ID, nil
}

func (l *LocalScheduler) Cancel(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sn, err := l.store.GetNotification(id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if sn.Status != models.NotificationScheduled {
		return nil
	}
	return l.store.UpdateNotificationStatus(id, models.NotificationCancelled, nil)
}

func (l *LocalScheduler) CancelAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := l.store.CancelAllNotifications()
	return err
}
