package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/logger"
)

// ReminderPayload is the body of a reminder:send task.
type ReminderPayload struct {
	ID         string            `json:"id"`
	ReminderID string            `json:"reminder_id"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type inspector interface {
	DeleteTask(queue, id string) error
	DeleteAllScheduledTasks(queue string) (int, error)
}

// QueueScheduler schedules notifications as delayed asynq tasks in Redis.
// The task ID is the notification identifier.
type QueueScheduler struct {
	client    enqueuer
	inspector inspector
	queue     string
	closers   []func() error
}

func NewQueueScheduler(opt asynq.RedisClientOpt) *QueueScheduler {
	client := asynq.NewClient(opt)
	insp := asynq.NewInspector(opt)
	return &QueueScheduler{
		client:    client,
		inspector: insp,
		queue:     constants.QueueName,
		closers:   []func() error{client.Close, insp.Close},
	}
}

// NewReminderTask builds the task delivering a reminder notification.
func NewReminderTask(p ReminderPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(constants.TaskTypeReminderSend, payload), nil
}

func (q *QueueScheduler) ScheduleAt(ctx context.Context, n Notification) (string, error) {
	id := uuid.New().String()
	task, err := NewReminderTask(ReminderPayload{
		ID:         id,
		ReminderID: n.Data[DataReminderID],
		Title:      n.Title,
		Body:       n.Body,
		Data:       n.Data,
	})
	if err != nil {
		return "", err
	}

	info, err := q.client.EnqueueContext(ctx, task,
		asynq.TaskID(id),
		asynq.Queue(q.queue),
		asynq.ProcessAt(n.TriggerAt),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue reminder task: %w", err)
	}
	logger.Debug("Reminder task enqueued", "id", info.ID, "queue", info.Queue, "process_at", n.TriggerAt)
	return id, nil
}

func (q *QueueScheduler) Cancel(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := q.inspector.DeleteTask(q.queue, id)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return err
}

func (q *QueueScheduler) CancelAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := q.inspector.DeleteAllScheduledTasks(q.queue)
	if errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Debug("Scheduled reminder tasks deleted", "count", n)
	return nil
}

func (q *QueueScheduler) Close() error {
	var errs []error
	for _, c := range q.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
