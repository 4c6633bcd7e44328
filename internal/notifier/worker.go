package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/logger"
)

// HandleReminderTask delivers a reminder:send task through the dispatcher.
// Malformed payloads are not retried.
func HandleReminderTask(d *Dispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p ReminderPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
		}
		logger.Info("Delivering queued reminder", "id", p.ID, "reminder_id", p.ReminderID)

		data := p.Data
		if data == nil {
			data = map[string]string{}
		}
		if p.ReminderID != "" {
			data[DataReminderID] = p.ReminderID
		}
		return d.Deliver(ctx, Message{ID: p.ID, Title: p.Title, Body: p.Body, Data: data})
	}
}

// NewWorker builds the asynq server and mux serving the reminders queue.
func NewWorker(opt asynq.RedisClientOpt, d *Dispatcher, concurrency int) (*asynq.Server, *asynq.ServeMux) {
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			constants.QueueName: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(constants.TaskTypeReminderSend, HandleReminderTask(d))
	return srv, mux
}
