package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskmesh/taskmesh/internal/ledger"
	"github.com/taskmesh/taskmesh/internal/platform/db"
	"github.com/taskmesh/taskmesh/internal/shared"
)

// Repository encapsulates task storage. Status changes go through the
// conditional-update primitive so a check-then-set pair never races.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Create(ctx context.Context, task Task) error
	Get(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context, req ListTasksRequest) ([]Task, int, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status, acceptorID *uuid.UUID) (bool, error)
}

// TxRepository exposes the operations available inside the completion
// transaction: the task row lock, the status compare-and-swap, and the ledger
// mutations that must commit in the same unit.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Task, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status, acceptorID *uuid.UUID) (bool, error)
	DebitAccount(ctx context.Context, accountID uuid.UUID, amount int64) error
	CreditAccount(ctx context.Context, accountID uuid.UUID, amount int64) error
	InsertTransaction(ctx context.Context, txn ledger.Transaction) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the pgx-backed task repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const taskColumns = `id, title, description, category, credits, estimated_time, location, is_remote, tags, status, poster_id, acceptor_id, created_at, updated_at, expires_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.Credits, &t.EstimatedTime, &t.Location, &t.IsRemote, &t.Tags, &t.Status, &t.PosterID, &t.AcceptorID, &t.CreatedAt, &t.UpdatedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tasks: %w", shared.ErrNotFound)
		}
		return nil, fmt.Errorf("tasks: scan task: %w", err)
	}
	return &t, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) Create(ctx context.Context, task Task) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO tasks (id, title, description, category, credits, estimated_time, location, is_remote, tags, status, poster_id, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW(), $12)`,
		task.ID, task.Title, task.Description, task.Category, task.Credits, task.EstimatedTime, task.Location, task.IsRemote, task.Tags, task.Status, task.PosterID, task.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("tasks: poster account %s: %w", task.PosterID, shared.ErrNotFound)
		}
		return fmt.Errorf("tasks: create: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context, req ListTasksRequest) ([]Task, int, error) {
	conditions := []string{"TRUE"}
	var args []any
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, *req.Category)
		argPos++
	}
	if req.IsRemote != nil {
		conditions = append(conditions, fmt.Sprintf("is_remote = $%d", argPos))
		args = append(args, *req.IsRemote)
		argPos++
	}
	if req.MinCredits != nil {
		conditions = append(conditions, fmt.Sprintf("credits >= $%d", argPos))
		args = append(args, *req.MinCredits)
		argPos++
	}
	if req.MaxCredits != nil {
		conditions = append(conditions, fmt.Sprintf("credits <= $%d", argPos))
		args = append(args, *req.MaxCredits)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tasks %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("tasks: count: %w", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT %s FROM tasks %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", taskColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("tasks: list: %w", err)
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.Credits, &t.EstimatedTime, &t.Location, &t.IsRemote, &t.Tags, &t.Status, &t.PosterID, &t.AcceptorID, &t.CreatedAt, &t.UpdatedAt, &t.ExpiresAt); err != nil {
			return nil, 0, fmt.Errorf("tasks: scan: %w", err)
		}
		result = append(result, t)
	}
	return result, total, rows.Err()
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status, acceptorID *uuid.UUID) (bool, error) {
	return updateStatusIf(ctx, r.pool, id, from, to, acceptorID)
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*Task, error) {
	return scanTask(r.tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id))
}

func (r *txRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status, acceptorID *uuid.UUID) (bool, error) {
	return updateStatusIf(ctx, r.tx, id, from, to, acceptorID)
}

func (r *txRepository) DebitAccount(ctx context.Context, accountID uuid.UUID, amount int64) error {
	return ledger.ApplyDebit(ctx, r.tx, accountID, amount)
}

func (r *txRepository) CreditAccount(ctx context.Context, accountID uuid.UUID, amount int64) error {
	return ledger.ApplyCredit(ctx, r.tx, accountID, amount)
}

func (r *txRepository) InsertTransaction(ctx context.Context, txn ledger.Transaction) error {
	return ledger.RecordTransaction(ctx, r.tx, txn)
}

// updateStatusIf is the single conditional-update primitive: compare the
// current status and set the new one in one statement. Callers learn they
// lost a race by the zero row count, never by reading stale state.
func updateStatusIf(ctx context.Context, db shared.DBTX, id uuid.UUID, from, to Status, acceptorID *uuid.UUID) (bool, error) {
	var tag pgconn.CommandTag
	var err error
	if acceptorID != nil {
		tag, err = db.Exec(ctx, `UPDATE tasks SET status = $3, acceptor_id = $4, updated_at = NOW() WHERE id = $1 AND status = $2`, id, from, to, *acceptorID)
	} else {
		tag, err = db.Exec(ctx, `UPDATE tasks SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`, id, from, to)
	}
	if err != nil {
		return false, fmt.Errorf("tasks: update status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
