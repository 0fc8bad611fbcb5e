package httpx

import (
	"errors"
	"net/http"

	"github.com/taskmesh/taskmesh/internal/shared"
)

// RespondError maps domain errors to stable, distinguishable HTTP responses
// so the calling layer can render an appropriate message. Internal failures
// deliberately leak no detail.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, shared.ErrInsufficientFunds):
		Problem(w, http.StatusUnprocessableEntity, "Insufficient Funds", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	default:
		// shared.ErrInternal and anything unrecognized.
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
