package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskmesh/taskmesh/internal/platform/httpx"
	"github.com/taskmesh/taskmesh/internal/shared"
)

// Handler exposes the audit timeline.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler returns the audit HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger}
}

// MountRoutes attaches the timeline endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Timeline)
}

func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func parseFilters(r *http.Request) (TimelineFilters, error) {
	q := r.URL.Query()
	var filters TimelineFilters

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, fmt.Errorf("audit: invalid from timestamp: %w", shared.ErrValidation)
		}
		filters.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, fmt.Errorf("audit: invalid to timestamp: %w", shared.ErrValidation)
		}
		filters.To = &t
	}
	if v := q.Get("actor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filters, fmt.Errorf("audit: invalid actor id: %w", shared.ErrValidation)
		}
		filters.ActorID = &id
	}
	filters.Action = q.Get("action")

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filters, fmt.Errorf("audit: invalid page: %w", shared.ErrValidation)
		}
		filters.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filters, fmt.Errorf("audit: invalid page size: %w", shared.ErrValidation)
		}
		filters.PageSize = n
	}
	return filters, nil
}
