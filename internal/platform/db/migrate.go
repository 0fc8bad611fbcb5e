package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// RunMigrations applies the embedded goose migrations. Command is one of
// up, down, status, redo.
func RunMigrations(ctx context.Context, dsn, command string) error {
	migrationCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("platform/db: sql open: %w", err)
	}
	defer func() { _ = conn.Close() }()

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("platform/db: set dialect: %w", err)
	}

	if err := goose.RunContext(migrationCtx, command, conn, "migrations"); err != nil {
		return fmt.Errorf("platform/db: goose %s: %w", command, err)
	}

	return nil
}
