package notifications

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/taskmesh/taskmesh/internal/tasks"
)

// Client is the subset of asynq.Client the enqueuer needs.
type Client interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer publishes task transition events onto the job queue. Publishing
// is best-effort: a broker failure is logged and never propagated, because
// notification delivery is not a correctness dependency of the transition.
type Enqueuer struct {
	client Client
	logger *slog.Logger
}

var _ tasks.Notifier = (*Enqueuer)(nil)

// NewEnqueuer returns the enqueuer.
func NewEnqueuer(client Client, logger *slog.Logger) *Enqueuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enqueuer{client: client, logger: logger}
}

// TaskAccepted publishes a task:accepted event.
func (e *Enqueuer) TaskAccepted(ctx context.Context, evt tasks.Event) {
	e.publish(ctx, TypeTaskAccepted, evt)
}

// TaskCompleted publishes a task:completed event.
func (e *Enqueuer) TaskCompleted(ctx context.Context, evt tasks.Event) {
	e.publish(ctx, TypeTaskCompleted, evt)
}

func (e *Enqueuer) publish(ctx context.Context, taskType string, evt tasks.Event) {
	if e == nil || e.client == nil {
		return
	}
	job, err := NewTaskEventTask(taskType, TaskEventPayload{
		TaskID:     evt.TaskID,
		Title:      evt.Title,
		Credits:    evt.Credits,
		PosterID:   evt.PosterID,
		AcceptorID: evt.AcceptorID,
	})
	if err != nil {
		e.logger.Error("build notification job", slog.String("type", taskType), slog.Any("error", err))
		return
	}
	if _, err := e.client.EnqueueContext(ctx, job); err != nil {
		e.logger.Error("enqueue notification job",
			slog.String("type", taskType),
			slog.String("task_id", evt.TaskID.String()),
			slog.Any("error", err),
		)
	}
}
