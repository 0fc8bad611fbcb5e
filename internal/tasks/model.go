package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Status is the task lifecycle state. Legal transitions:
// OPEN -> IN_PROGRESS -> COMPLETED, OPEN -> CANCELLED,
// IN_PROGRESS -> DISPUTED. Everything else is rejected.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusDisputed   Status = "DISPUTED"
)

// Task is a unit of work offered for credits. Credits are fixed at creation;
// the price of a task never changes.
type Task struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      *string    `json:"category,omitempty"`
	Credits       int64      `json:"credits"`
	EstimatedTime int        `json:"estimated_time"`
	Location      *string    `json:"location,omitempty"`
	IsRemote      bool       `json:"is_remote"`
	Tags          []string   `json:"tags"`
	Status        Status     `json:"status"`
	PosterID      uuid.UUID  `json:"poster_id"`
	AcceptorID    *uuid.UUID `json:"acceptor_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}
