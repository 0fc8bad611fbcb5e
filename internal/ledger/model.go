package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Reason classifies a credit movement.
type Reason string

const (
	ReasonTaskPayment Reason = "TASK_PAYMENT"
	ReasonTopUp       Reason = "TOP_UP"
	ReasonRefund      Reason = "REFUND"
)

// TransactionStatus is recorded on every ledger entry. Entries are written
// atomically with the balance change they represent, so COMPLETED is the only
// status this engine produces.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
)

// Account holds a non-negative credit balance. Balances are integer credit
// units; exact arithmetic, never floating point.
type Account struct {
	ID        uuid.UUID `json:"id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is the immutable record of one credit movement. FromID is nil
// for top-ups (credit creation from outside the peer-to-peer loop).
type Transaction struct {
	ID        uuid.UUID         `json:"id"`
	Amount    int64             `json:"amount"`
	Reason    Reason            `json:"reason"`
	Status    TransactionStatus `json:"status"`
	Note      *string           `json:"note,omitempty"`
	FromID    *uuid.UUID        `json:"from_id,omitempty"`
	ToID      uuid.UUID         `json:"to_id"`
	TaskID    *uuid.UUID        `json:"task_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Wallet is the caller-facing view of an account: current balance plus the
// most recent movements touching it.
type Wallet struct {
	AccountID          uuid.UUID     `json:"account_id"`
	Balance            int64         `json:"balance"`
	RecentTransactions []Transaction `json:"recent_transactions"`
}

// TransactionPage is one page of an account's full transaction history,
// newest first.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	Total        int           `json:"total"`
}
