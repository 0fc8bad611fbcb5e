package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskmesh/taskmesh/internal/shared"
)

// TransferObserver receives the outcome of every executed transfer, for
// metrics. Implementations must be safe for concurrent use.
type TransferObserver interface {
	ObserveTransfer(reason, outcome string)
}

// NopTransferObserver discards observations.
type NopTransferObserver struct{}

func (NopTransferObserver) ObserveTransfer(string, string) {}

// TransferOutcome labels the result of an executed transfer.
func TransferOutcome(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, shared.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "failed"
	}
}

// TransferInput describes one credit movement. A nil From denotes a top-up:
// no debit occurs, credits enter the loop from outside.
type TransferInput struct {
	From           *uuid.UUID
	To             uuid.UUID
	Amount         int64
	Reason         Reason
	TaskID         *uuid.UUID
	Note           *string
	IdempotencyKey string
}

// Validate catches malformed input before any mutation.
func (in TransferInput) Validate() error {
	if in.Amount <= 0 {
		return fmt.Errorf("ledger: amount must be positive: %w", shared.ErrValidation)
	}
	if in.To == uuid.Nil {
		return fmt.Errorf("ledger: destination account required: %w", shared.ErrValidation)
	}
	if in.From != nil && *in.From == in.To {
		return fmt.Errorf("ledger: transfer to self: %w", shared.ErrValidation)
	}
	if in.Reason == "" {
		return fmt.Errorf("ledger: reason required: %w", shared.ErrValidation)
	}
	return nil
}

// Engine executes atomic multi-account balance changes paired with a
// transaction-log append, all-or-nothing. Concurrent transfers touching the
// same account serialize on the guarded balance updates, so the conservation
// law holds at every commit point.
type Engine struct {
	repo Repository
	obs  TransferObserver
	now  func() time.Time
}

// NewEngine returns a transfer engine over the given repository.
func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo, obs: NopTransferObserver{}, now: time.Now}
}

// WithObserver attaches a metrics sink for transfer outcomes.
func (e *Engine) WithObserver(obs TransferObserver) {
	if obs != nil {
		e.obs = obs
	}
}

// WithNow overrides the clock, for tests.
func (e *Engine) WithNow(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Transfer commits debit, credit and ledger entry together or not at all. On
// any failure no balance is changed and no transaction record exists.
func (e *Engine) Transfer(ctx context.Context, in TransferInput) (*Transaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	txn := Transaction{
		ID:        uuid.New(),
		Amount:    in.Amount,
		Reason:    in.Reason,
		Status:    TransactionStatusCompleted,
		Note:      in.Note,
		FromID:    in.From,
		ToID:      in.To,
		TaskID:    in.TaskID,
		CreatedAt: e.now(),
	}

	err := e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if in.IdempotencyKey != "" {
			if err := tx.ReserveIdempotencyKey(ctx, in.IdempotencyKey, "ledger"); err != nil {
				return err
			}
		}
		if in.From != nil {
			if err := tx.Debit(ctx, *in.From, in.Amount); err != nil {
				return err
			}
		}
		if err := tx.Credit(ctx, in.To, in.Amount); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, txn)
	})
	e.obs.ObserveTransfer(string(in.Reason), TransferOutcome(err))
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
