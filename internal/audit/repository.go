package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the append-only audit_logs table. Writes happen elsewhere
// (shared.AuditLogger); this side never mutates.
type Repository interface {
	Timeline(ctx context.Context, filters TimelineFilters, limit, offset int) ([]TimelineRow, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the pgx-backed audit repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Timeline(ctx context.Context, filters TimelineFilters, limit, offset int) ([]TimelineRow, int, error) {
	conditions := []string{"TRUE"}
	var args []any
	argPos := 1

	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at >= $%d", argPos))
		args = append(args, *filters.From)
		argPos++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at <= $%d", argPos))
		args = append(args, *filters.To)
		argPos++
	}
	if filters.ActorID != nil {
		conditions = append(conditions, fmt.Sprintf("actor_id = $%d", argPos))
		args = append(args, *filters.ActorID)
		argPos++
	}
	if filters.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", argPos))
		args = append(args, filters.Action)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM audit_logs %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("audit: count: %w", err)
	}

	query := fmt.Sprintf(`SELECT id, actor_id, action, meta, occurred_at FROM audit_logs %s ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("audit: timeline: %w", err)
	}
	defer rows.Close()

	var result []TimelineRow
	for rows.Next() {
		var row TimelineRow
		var meta []byte
		if err := rows.Scan(&row.ID, &row.ActorID, &row.Action, &meta, &row.OccurredAt); err != nil {
			return nil, 0, fmt.Errorf("audit: scan: %w", err)
		}
		if err := json.Unmarshal(meta, &row.Meta); err != nil {
			return nil, 0, fmt.Errorf("audit: unmarshal meta: %w", err)
		}
		result = append(result, row)
	}
	return result, total, rows.Err()
}
