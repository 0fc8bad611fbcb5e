package ledger

// CreateAccountRequest provisions an account for an externally authenticated
// identity. AccountID is optional; one is generated when absent.
type CreateAccountRequest struct {
	AccountID string `json:"account_id" validate:"omitempty,uuid4"`
}

// TopUpRequest credits the caller's own account.
type TopUpRequest struct {
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=128"`
}
