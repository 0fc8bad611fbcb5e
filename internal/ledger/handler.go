package ledger

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskmesh/taskmesh/internal/platform/httpx"
	"github.com/taskmesh/taskmesh/internal/shared"
)

// Handler exposes the wallet API. It is a thin wrapper: identity comes from
// the request context, every core operation takes the actor explicitly.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler returns the ledger HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		service:  service,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CreateAccount provisions a zero-balance account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%s: %w", err.Error(), shared.ErrValidation))
		return
	}

	var id uuid.UUID
	if req.AccountID != "" {
		parsed, err := uuid.Parse(req.AccountID)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("invalid account id: %w", shared.ErrValidation))
			return
		}
		id = parsed
	}

	account, err := h.service.CreateAccount(r.Context(), id)
	if err != nil {
		h.logger.Error("create account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

// Wallet returns the caller's balance and recent transactions.
func (h *Handler) Wallet(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor identity required")
		return
	}

	wallet, err := h.service.Wallet(r.Context(), actorID)
	if err != nil {
		h.logger.Error("get wallet", slog.String("account_id", actorID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, wallet)
}

// Transactions pages through the caller's full transaction history.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor identity required")
		return
	}

	page, pageSize, err := parsePaging(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	result, err := h.service.ListTransactions(r.Context(), actorID, page, pageSize)
	if err != nil {
		h.logger.Error("list transactions", slog.String("account_id", actorID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func parsePaging(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	var page, pageSize int
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("ledger: invalid page: %w", shared.ErrValidation)
		}
		page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("ledger: invalid page size: %w", shared.ErrValidation)
		}
		pageSize = n
	}
	return page, pageSize, nil
}

// TopUp credits the caller's own account.
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor identity required")
		return
	}

	var req TopUpRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%s: %w", err.Error(), shared.ErrValidation))
		return
	}

	txn, err := h.service.TopUp(r.Context(), actorID, req.Amount, req.IdempotencyKey)
	if err != nil {
		h.logger.Error("top up", slog.String("account_id", actorID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txn)
}
