package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskmesh/taskmesh/internal/shared"
)

// WithTx executes fn within a RepeatableRead transaction. The transaction is
// rolled back whenever fn returns an error, so no partial writes survive.
// Begin and commit failures carry shared.ErrInternal: the caller must treat
// the operation as not-happened.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %v: %w", err, shared.ErrInternal)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %v: %w", err, shared.ErrInternal)
	}

	return nil
}
