package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Processor materialises queued task events into notification rows. It runs
// inside the asynq worker, downstream of the lifecycle controller.
type Processor struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewProcessor returns the worker-side event processor.
func NewProcessor(repo Repository, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{repo: repo, logger: logger, now: time.Now}
}

// HandleTaskAccepted notifies the poster that their task was picked up.
func (p *Processor) HandleTaskAccepted(ctx context.Context, t *asynq.Task) error {
	payload, err := decodePayload(t)
	if err != nil {
		return asynq.SkipRetry
	}
	return p.insert(ctx, payload.PosterID, KindTaskAccepted, payload)
}

// HandleTaskCompleted notifies the acceptor that payment settled.
func (p *Processor) HandleTaskCompleted(ctx context.Context, t *asynq.Task) error {
	payload, err := decodePayload(t)
	if err != nil {
		return asynq.SkipRetry
	}
	return p.insert(ctx, payload.AcceptorID, KindTaskCompleted, payload)
}

func (p *Processor) insert(ctx context.Context, recipient uuid.UUID, kind Kind, payload TaskEventPayload) error {
	err := p.repo.Insert(ctx, Notification{
		ID:        uuid.New(),
		AccountID: recipient,
		Kind:      kind,
		Payload: map[string]any{
			"task_id": payload.TaskID.String(),
			"title":   payload.Title,
			"credits": payload.Credits,
		},
		CreatedAt: p.now(),
	})
	if err != nil {
		p.logger.Error("insert notification",
			slog.String("kind", string(kind)),
			slog.String("task_id", payload.TaskID.String()),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

func decodePayload(t *asynq.Task) (TaskEventPayload, error) {
	var payload TaskEventPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return TaskEventPayload{}, err
	}
	return payload, nil
}
