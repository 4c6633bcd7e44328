package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/storage"
)

// Dispatcher fans a message out to every configured channel and records
// each attempt as a delivery.
type Dispatcher struct {
	store   storage.Provider
	senders []Sender
	grace   time.Duration
	now     func() time.Time
}

// Result summarises one dispatch pass.
type Result struct {
	Sent    int
	Expired int
	Failed  int
}

func NewDispatcher(store storage.Provider, grace time.Duration, senders ...Sender) *Dispatcher {
	return &Dispatcher{store: store, senders: senders, grace: grace, now: time.Now}
}

// Deliver sends msg on every channel. It fails only if no channel succeeded.
func (d *Dispatcher) Deliver(ctx context.Context, msg Message) error {
	if len(d.senders) == 0 {
		return errors.New("no notification channels configured")
	}

	var errs []error
	delivered := 0
	for _, s := range d.senders {
		err := s.Send(ctx, msg)
		rec := models.Delivery{
			ID:             uuid.New().String(),
			NotificationID: msg.ID,
			Channel:        s.Channel(),
			Status:         "sent",
			SentAt:         d.now(),
		}
		if err != nil {
			rec.Status = "failed"
			rec.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", s.Channel(), err))
			logger.Warn("Notification channel failed", "channel", s.Channel(), "id", msg.ID, "error", err)
		} else {
			delivered++
		}
		if err := d.store.AddDelivery(rec); err != nil {
			logger.Warn("Failed to record delivery", "id", msg.ID, "error", err)
		}
	}

	if delivered == 0 {
		return errors.Join(errs...)
	}
	return nil
}

// DispatchDue delivers every locally scheduled notification that has come
// due. Notifications later than the grace period are expired instead.
// Notifications no channel accepted stay scheduled for the next pass.
func (d *Dispatcher) DispatchDue(ctx context.Context) (Result, error) {
	var res Result
	now := d.now()
	due, err := d.store.GetDueNotifications(now)
	if err != nil {
		return res, err
	}

	for _, n := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if d.grace > 0 && now.Sub(n.TriggerAt) > d.grace {
			if err := d.store.UpdateNotificationStatus(n.ID, models.NotificationExpired, nil); err != nil {
				return res, err
			}
			logger.Info("Notification expired", "id", n.ID, "trigger_at", n.TriggerAt)
			res.Expired++
			continue
		}

		msg := Message{ID: n.ID, Title: n.Title, Body: n.Body, Data: map[string]string{DataReminderID: n.ReminderID}}
		if err := d.Deliver(ctx, msg); err != nil {
			logger.Warn("Notification not delivered", "id", n.ID, "error", err)
			res.Failed++
			continue
		}

		sentAt := d.now()
		if err := d.store.UpdateNotificationStatus(n.ID, models.NotificationSent, &sentAt); err != nil {
			return res, err
		}
		res.Sent++
	}
	return res, nil
}
