package notifications

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskmesh/taskmesh/internal/platform/httpx"
	"github.com/taskmesh/taskmesh/internal/shared"
)

// Handler exposes the notification inbox.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler returns the notification HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger}
}

// MountRoutes attaches the inbox endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Inbox)
	r.Post("/{id}/read", h.MarkRead)
}

func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor identity required")
		return
	}

	unreadOnly := false
	if v := r.URL.Query().Get("unread"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("notifications: invalid unread filter: %w", shared.ErrValidation))
			return
		}
		unreadOnly = parsed
	}

	items, unread, err := h.service.Inbox(r.Context(), actorID, unreadOnly)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Notification{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": items, "unread_count": unread})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor identity required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("notifications: invalid id: %w", shared.ErrValidation))
		return
	}

	if err := h.service.MarkRead(r.Context(), actorID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
