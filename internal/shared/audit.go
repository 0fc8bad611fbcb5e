package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog represents a record stored in audit_logs. ActorID is nil for
// actions that have no authenticated actor (system events).
type AuditLog struct {
	ActorID *uuid.UUID
	Action  string
	Meta    map[string]any
	At      time.Time
}

// AuditPort is implemented by anything able to persist audit records.
type AuditPort interface {
	Record(ctx context.Context, log AuditLog) error
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" {
		return errors.New("audit log requires action")
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, meta, occurred_at) VALUES ($1, $2, $3, COALESCE($4, NOW()))`, log.ActorID, log.Action, metaJSON, nullTime(log.At))
	return err
}

// BestEffortAuditor wraps an AuditPort so that write failures are logged but
// never propagated to the primary operation. Audit is observability, not a
// correctness dependency.
type BestEffortAuditor struct {
	port   AuditPort
	logger *slog.Logger
}

// NewBestEffortAuditor returns the wrapper. A nil port disables auditing.
func NewBestEffortAuditor(port AuditPort, logger *slog.Logger) *BestEffortAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BestEffortAuditor{port: port, logger: logger}
}

// Record attempts the write and swallows the error after logging it.
func (a *BestEffortAuditor) Record(ctx context.Context, log AuditLog) {
	if a == nil || a.port == nil {
		return
	}
	if err := a.port.Record(ctx, log); err != nil {
		a.logger.Error("audit write failed",
			slog.String("action", log.Action),
			slog.Any("error", err),
		)
	}
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
