package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskmesh/taskmesh/internal/shared"
)

// Low-level balance mutations over shared.DBTX so they compose into any
// caller's transaction: the transfer engine runs them inside its own unit,
// and task completion runs them inside the task-status transaction. Each is
// a single guarded UPDATE, so read-modify-write is atomic per account and
// concurrent movements cannot lose updates.

// ApplyDebit decrements an account balance. The balance guard is part of the
// UPDATE itself; no observer can ever see a negative balance.
func ApplyDebit(ctx context.Context, db shared.DBTX, accountID uuid.UUID, amount int64) error {
	tag, err := db.Exec(ctx, `UPDATE accounts SET balance = balance - $2, updated_at = NOW() WHERE id = $1 AND balance >= $2`, accountID, amount)
	if err != nil {
		return fmt.Errorf("ledger: debit account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); err != nil {
			return fmt.Errorf("ledger: debit existence check: %w", err)
		}
		if !exists {
			return fmt.Errorf("ledger: account %s: %w", accountID, shared.ErrNotFound)
		}
		return fmt.Errorf("ledger: account %s: %w", accountID, shared.ErrInsufficientFunds)
	}
	return nil
}

// ApplyCredit increments an account balance.
func ApplyCredit(ctx context.Context, db shared.DBTX, accountID uuid.UUID, amount int64) error {
	tag, err := db.Exec(ctx, `UPDATE accounts SET balance = balance + $2, updated_at = NOW() WHERE id = $1`, accountID, amount)
	if err != nil {
		return fmt.Errorf("ledger: credit account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger: account %s: %w", accountID, shared.ErrNotFound)
	}
	return nil
}

// RecordTransaction appends the immutable ledger entry for a movement.
func RecordTransaction(ctx context.Context, db shared.DBTX, txn Transaction) error {
	_, err := db.Exec(ctx, `INSERT INTO transactions (id, amount, reason, status, note, from_id, to_id, task_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))`,
		txn.ID, txn.Amount, txn.Reason, txn.Status, txn.Note, txn.FromID, txn.ToID, txn.TaskID, nullTime(txn.CreatedAt))
	if err != nil {
		return fmt.Errorf("ledger: record transaction: %w", err)
	}
	return nil
}

// AccountBalance reads the current balance.
func AccountBalance(ctx context.Context, db shared.DBTX, accountID uuid.UUID) (int64, error) {
	var balance int64
	err := db.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		if isNoRows(err) {
			return 0, fmt.Errorf("ledger: account %s: %w", accountID, shared.ErrNotFound)
		}
		return 0, fmt.Errorf("ledger: account balance: %w", err)
	}
	return balance, nil
}
