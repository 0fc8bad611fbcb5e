package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Kind labels what happened.
type Kind string

const (
	KindTaskAccepted  Kind = "TASK_ACCEPTED"
	KindTaskCompleted Kind = "TASK_COMPLETED"
)

// Notification is one item in an account's inbox.
type Notification struct {
	ID        uuid.UUID      `json:"id"`
	AccountID uuid.UUID      `json:"account_id"`
	Kind      Kind           `json:"kind"`
	Payload   map[string]any `json:"payload"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}
