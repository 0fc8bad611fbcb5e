package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/taskmesh/taskmesh/internal/app"
	"github.com/taskmesh/taskmesh/internal/platform/db"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if err := db.RunMigrations(context.Background(), cfg.PGDSN, command); err != nil {
		logger.Error("run migrations", slog.String("command", command), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied", slog.String("command", command))
}
