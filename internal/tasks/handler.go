package tasks

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskmesh/taskmesh/internal/platform/httpx"
	"github.com/taskmesh/taskmesh/internal/shared"
)

// Handler exposes the task API.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler returns the task HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		service:  service,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor identity required")
		return
	}

	var req CreateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%s: %w", err.Error(), shared.ErrValidation))
		return
	}

	task, err := h.service.Create(r.Context(), actorID, req)
	if err != nil {
		h.logger.Error("create task", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list tasks", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Task{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tasks": items, "total": total})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDFromURL(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	task, err := h.service.Get(r.Context(), taskID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "accept task", func(taskID, actorID uuid.UUID) (*Task, error) {
		return h.service.Accept(r.Context(), taskID, actorID)
	})
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor identity required")
		return
	}
	taskID, err := taskIDFromURL(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.Complete(r.Context(), taskID, actorID); err != nil {
		h.logger.Error("complete task", slog.String("task_id", taskID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel task", func(taskID, actorID uuid.UUID) (*Task, error) {
		return h.service.Cancel(r.Context(), taskID, actorID)
	})
}

func (h *Handler) Dispute(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "dispute task", func(taskID, actorID uuid.UUID) (*Task, error) {
		return h.service.Dispute(r.Context(), taskID, actorID)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op string, fn func(taskID, actorID uuid.UUID) (*Task, error)) {
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor identity required")
		return
	}
	taskID, err := taskIDFromURL(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	task, err := fn(taskID, actorID)
	if err != nil {
		h.logger.Error(op, slog.String("task_id", taskID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func taskIDFromURL(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("tasks: invalid task id: %w", shared.ErrValidation)
	}
	return id, nil
}

func parseListRequest(r *http.Request) (ListTasksRequest, error) {
	q := r.URL.Query()
	req := ListTasksRequest{Limit: 50}

	status := Status(q.Get("status"))
	if status == "" {
		status = StatusOpen
	}
	switch status {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled, StatusDisputed:
		req.Status = &status
	default:
		return req, fmt.Errorf("tasks: unknown status %q: %w", status, shared.ErrValidation)
	}

	if v := q.Get("category"); v != "" {
		req.Category = &v
	}
	if v := q.Get("is_remote"); v != "" {
		remote, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("tasks: invalid is_remote: %w", shared.ErrValidation)
		}
		req.IsRemote = &remote
	}
	if v := q.Get("min_credits"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("tasks: invalid min_credits: %w", shared.ErrValidation)
		}
		req.MinCredits = &n
	}
	if v := q.Get("max_credits"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("tasks: invalid max_credits: %w", shared.ErrValidation)
		}
		req.MaxCredits = &n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			return req, fmt.Errorf("tasks: invalid limit: %w", shared.ErrValidation)
		}
		req.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, fmt.Errorf("tasks: invalid offset: %w", shared.ErrValidation)
		}
		req.Offset = n
	}
	return req, nil
}
