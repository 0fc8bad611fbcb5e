package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskmesh/taskmesh/internal/shared"
)

// CreateTaskRequest carries the fields a poster supplies. IsRemote defaults
// to true when omitted.
type CreateTaskRequest struct {
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description" validate:"required"`
	Category      *string    `json:"category,omitempty"`
	Credits       int64      `json:"credits" validate:"required,gt=0"`
	EstimatedTime int        `json:"estimated_time" validate:"required,gt=0"`
	Location      *string    `json:"location,omitempty"`
	IsRemote      *bool      `json:"is_remote,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Validate re-checks the core invariants independently of transport-level
// validation; every rejection happens before any mutation.
func (req CreateTaskRequest) Validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("tasks: title required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("tasks: description required: %w", shared.ErrValidation)
	}
	if req.Credits <= 0 {
		return fmt.Errorf("tasks: credits must be positive: %w", shared.ErrValidation)
	}
	if req.EstimatedTime <= 0 {
		return fmt.Errorf("tasks: estimated time must be positive: %w", shared.ErrValidation)
	}
	return nil
}

// ListTasksRequest carries the browse filters from the marketplace view.
type ListTasksRequest struct {
	Status     *Status
	Category   *string
	IsRemote   *bool
	MinCredits *int64
	MaxCredits *int64
	Limit      int
	Offset     int
}
