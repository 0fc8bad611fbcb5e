package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskmesh/taskmesh/internal/platform/db"
	"github.com/taskmesh/taskmesh/internal/shared"
)

// Repository encapsulates ledger storage.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	CreateAccount(ctx context.Context, account Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	Balance(ctx context.Context, id uuid.UUID) (int64, error)
	RecentTransactions(ctx context.Context, accountID uuid.UUID, limit int) ([]Transaction, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Transaction, int, error)
}

// TxRepository exposes the mutations available inside one atomic unit.
type TxRepository interface {
	Debit(ctx context.Context, accountID uuid.UUID, amount int64) error
	Credit(ctx context.Context, accountID uuid.UUID, amount int64) error
	InsertTransaction(ctx context.Context, txn Transaction) error
	ReserveIdempotencyKey(ctx context.Context, key, module string) error
}

type repository struct {
	pool *pgxpool.Pool
	idem *shared.IdempotencyStore
}

// NewRepository returns the pgx-backed ledger repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool, idem: shared.NewIdempotencyStore(pool)}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, idem: r.idem})
	})
}

func (r *repository) CreateAccount(ctx context.Context, account Account) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO accounts (id, balance, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())`, account.ID, account.Balance)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("ledger: account %s already exists: %w", account.ID, shared.ErrValidation)
		}
		return fmt.Errorf("ledger: create account: %w", err)
	}
	return nil
}

func (r *repository) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx, `SELECT id, balance, created_at, updated_at FROM accounts WHERE id = $1`, id).
		Scan(&a.ID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("ledger: account %s: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("ledger: get account: %w", err)
	}
	return &a, nil
}

func (r *repository) Balance(ctx context.Context, id uuid.UUID) (int64, error) {
	return AccountBalance(ctx, r.pool, id)
}

func (r *repository) RecentTransactions(ctx context.Context, accountID uuid.UUID, limit int) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, amount, reason, status, note, from_id, to_id, task_id, created_at
FROM transactions
WHERE from_id = $1 OR to_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: recent transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *repository) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Transaction, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE from_id = $1 OR to_id = $1`, accountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ledger: count transactions: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT id, amount, reason, status, note, from_id, to_id, task_id, created_at
FROM transactions
WHERE from_id = $1 OR to_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ledger: list transactions: %w", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

func scanTransactions(rows pgx.Rows) ([]Transaction, error) {
	var txns []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Amount, &t.Reason, &t.Status, &t.Note, &t.FromID, &t.ToID, &t.TaskID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

type txRepository struct {
	tx   pgx.Tx
	idem *shared.IdempotencyStore
}

func (r *txRepository) Debit(ctx context.Context, accountID uuid.UUID, amount int64) error {
	return ApplyDebit(ctx, r.tx, accountID, amount)
}

func (r *txRepository) Credit(ctx context.Context, accountID uuid.UUID, amount int64) error {
	return ApplyCredit(ctx, r.tx, accountID, amount)
}

func (r *txRepository) InsertTransaction(ctx context.Context, txn Transaction) error {
	return RecordTransaction(ctx, r.tx, txn)
}

func (r *txRepository) ReserveIdempotencyKey(ctx context.Context, key, module string) error {
	return r.idem.CheckAndInsert(ctx, r.tx, key, module)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
