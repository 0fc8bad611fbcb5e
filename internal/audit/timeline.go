package audit

import (
	"time"

	"github.com/google/uuid"
)

// TimelineRow is one audit entry as shown in the timeline.
type TimelineRow struct {
	ID         int64          `json:"id"`
	ActorID    *uuid.UUID     `json:"actor_id,omitempty"`
	Action     string         `json:"action"`
	Meta       map[string]any `json:"meta"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// TimelineFilters narrows the timeline query.
type TimelineFilters struct {
	From     *time.Time
	To       *time.Time
	ActorID  *uuid.UUID
	Action   string
	Page     int
	PageSize int
}

// PagingInfo describes the returned window.
type PagingInfo struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// Result bundles timeline rows with paging information.
type Result struct {
	Rows   []TimelineRow `json:"rows"`
	Paging PagingInfo    `json:"paging"`
}
