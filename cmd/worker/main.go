package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/taskmesh/taskmesh/internal/app"
	"github.com/taskmesh/taskmesh/internal/notifications"
	"github.com/taskmesh/taskmesh/internal/platform/db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	processor := notifications.NewProcessor(notifications.NewRepository(pool), logger)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues:      map[string]int{notifications.QueueDefault: 1},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notifications.TypeTaskAccepted, processor.HandleTaskAccepted)
	mux.HandleFunc(notifications.TypeTaskCompleted, processor.HandleTaskCompleted)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker", slog.Int("concurrency", cfg.WorkerConcurrency))
		errCh <- srv.Run(mux)
	}()

	select {
	case <-ctx.Done():
		logger.Info("stopping worker")
		srv.Shutdown()
	case err := <-errCh:
		if err != nil {
			logger.Error("worker run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
