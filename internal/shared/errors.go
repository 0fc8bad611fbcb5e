package shared

import "errors"

var (
	// ErrNotFound indicates a referenced task or account is absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the actor lacks rights for the action.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState indicates the action is not legal for the current task status.
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientFunds indicates the payer balance cannot cover the transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrValidation indicates malformed input detected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrInternal indicates a storage or transaction-commit failure; callers
	// must treat the operation as not-happened.
	ErrInternal = errors.New("internal failure")
)
