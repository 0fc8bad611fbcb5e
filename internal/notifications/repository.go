package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the notification inbox.
type Repository interface {
	Insert(ctx context.Context, n Notification) error
	ListForAccount(ctx context.Context, accountID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context, accountID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, accountID, id uuid.UUID) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the pgx-backed notification repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Insert(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("notifications: marshal payload: %w", err)
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO notifications (id, account_id, kind, payload, is_read, created_at) VALUES ($1, $2, $3, $4, FALSE, NOW())`,
		n.ID, n.AccountID, n.Kind, payload)
	if err != nil {
		return fmt.Errorf("notifications: insert: %w", err)
	}
	return nil
}

func (r *repository) ListForAccount(ctx context.Context, accountID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error) {
	query := `SELECT id, account_id, kind, payload, is_read, created_at FROM notifications WHERE account_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("notifications: list: %w", err)
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		var n Notification
		var payload []byte
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Kind, &payload, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("notifications: scan: %w", err)
		}
		if err := json.Unmarshal(payload, &n.Payload); err != nil {
			return nil, fmt.Errorf("notifications: unmarshal payload: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r *repository) UnreadCount(ctx context.Context, accountID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE account_id = $1 AND is_read = FALSE`, accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("notifications: unread count: %w", err)
	}
	return count, nil
}

func (r *repository) MarkRead(ctx context.Context, accountID, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND account_id = $2`, id, accountID)
	if err != nil {
		return false, fmt.Errorf("notifications: mark read: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
