package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskmesh/taskmesh/internal/shared"
)

const (
	recentTransactionLimit     = 20
	defaultTransactionPageSize = 20
	maxTransactionPageSize     = 100
)

// Service exposes the caller-facing wallet operations. Account creation is a
// provisioning hook for the external identity provider; it is the only way an
// account comes into existence, always with a zero balance.
type Service struct {
	repo   Repository
	engine *Engine
	audit  *shared.BestEffortAuditor
	now    func() time.Time
}

// NewService wires the ledger service.
func NewService(repo Repository, engine *Engine, audit *shared.BestEffortAuditor) *Service {
	return &Service{repo: repo, engine: engine, audit: audit, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateAccount provisions a zero-balance account. A nil id is generated.
func (s *Service) CreateAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	if id == uuid.Nil {
		id = uuid.New()
	}
	account := Account{ID: id, Balance: 0, CreatedAt: s.now(), UpdatedAt: s.now()}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, shared.AuditLog{
		Action: "account.created",
		Meta:   map[string]any{"account_id": id.String()},
		At:     s.now(),
	})
	return &account, nil
}

// TopUp credits an account from outside the peer-to-peer loop. The optional
// idempotency key makes retried purchase callbacks safe: a duplicate key
// fails with a conflict and credits the account exactly once.
func (s *Service) TopUp(ctx context.Context, accountID uuid.UUID, amount int64, idempotencyKey string) (*Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("ledger: top-up amount must be positive: %w", shared.ErrValidation)
	}
	txn, err := s.engine.Transfer(ctx, TransferInput{
		To:             accountID,
		Amount:         amount,
		Reason:         ReasonTopUp,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, shared.AuditLog{
		ActorID: &accountID,
		Action:  "wallet.topup",
		Meta:    map[string]any{"account_id": accountID.String(), "amount": amount},
		At:      s.now(),
	})
	return txn, nil
}

// Wallet returns the current balance and the most recent movements. The
// balance is read fresh on every call; nothing is cached between operations.
func (s *Service) Wallet(ctx context.Context, accountID uuid.UUID) (*Wallet, error) {
	balance, err := s.repo.Balance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	txns, err := s.repo.RecentTransactions(ctx, accountID, recentTransactionLimit)
	if err != nil {
		return nil, err
	}
	return &Wallet{
		AccountID:          accountID,
		Balance:            balance,
		RecentTransactions: txns,
	}, nil
}

// ListTransactions pages through every movement touching an account, newest
// first. Unlike Wallet the full history is reachable.
func (s *Service) ListTransactions(ctx context.Context, accountID uuid.UUID, page, pageSize int) (*TransactionPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultTransactionPageSize
	}
	if pageSize > maxTransactionPageSize {
		pageSize = maxTransactionPageSize
	}

	if _, err := s.repo.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	txns, total, err := s.repo.ListTransactions(ctx, accountID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if txns == nil {
		txns = []Transaction{}
	}
	return &TransactionPage{
		Transactions: txns,
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
	}, nil
}
