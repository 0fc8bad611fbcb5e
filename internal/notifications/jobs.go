package notifications

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue notification jobs are enqueued on.
	QueueDefault = "default"
	// TypeTaskAccepted is emitted when a task moves to IN_PROGRESS.
	TypeTaskAccepted = "task:accepted"
	// TypeTaskCompleted is emitted when a task settles.
	TypeTaskCompleted = "task:completed"
)

// TaskEventPayload is the wire form of a task transition event.
type TaskEventPayload struct {
	TaskID     uuid.UUID `json:"task_id"`
	Title      string    `json:"title"`
	Credits    int64     `json:"credits"`
	PosterID   uuid.UUID `json:"poster_id"`
	AcceptorID uuid.UUID `json:"acceptor_id"`
}

// NewTaskEventTask builds the asynq task for one transition event.
func NewTaskEventTask(taskType string, payload TaskEventPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data, asynq.Queue(QueueDefault)), nil
}
