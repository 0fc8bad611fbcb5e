package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taskmesh/taskmesh/internal/app"
	"github.com/taskmesh/taskmesh/internal/audit"
	"github.com/taskmesh/taskmesh/internal/ledger"
	"github.com/taskmesh/taskmesh/internal/notifications"
	"github.com/taskmesh/taskmesh/internal/observability"
	"github.com/taskmesh/taskmesh/internal/platform/cache"
	"github.com/taskmesh/taskmesh/internal/platform/db"
	"github.com/taskmesh/taskmesh/internal/shared"
	"github.com/taskmesh/taskmesh/internal/tasks"
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	auditor := shared.NewBestEffortAuditor(auditLogger, logger)

	metrics := observability.NewMetrics()

	ledgerRepo := ledger.NewRepository(pool)
	ledgerEngine := ledger.NewEngine(ledgerRepo)
	ledgerEngine.WithObserver(metrics)
	ledgerService := ledger.NewService(ledgerRepo, ledgerEngine, auditor)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	enqueuer := notifications.NewEnqueuer(asynqClient, logger)

	taskRepo := tasks.NewRepository(pool)
	taskService := tasks.NewService(taskRepo, auditor, enqueuer)
	taskService.WithTransferObserver(metrics)
	taskHandler := tasks.NewHandler(logger, taskService)

	notificationRepo := notifications.NewRepository(pool)
	notificationService := notifications.NewService(notificationRepo)
	notificationHandler := notifications.NewHandler(logger, notificationService)

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		TaskHandler:          taskHandler,
		LedgerHandler:        ledgerHandler,
		NotificationsHandler: notificationHandler,
		AuditHandler:         auditHandler,
		Metrics:              metrics,
		HealthCheck: func(w http.ResponseWriter, r *http.Request) {
			if err := pool.Ping(r.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
