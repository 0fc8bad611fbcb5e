package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskmesh/taskmesh/internal/audit"
	"github.com/taskmesh/taskmesh/internal/ledger"
	"github.com/taskmesh/taskmesh/internal/notifications"
	"github.com/taskmesh/taskmesh/internal/observability"
	"github.com/taskmesh/taskmesh/internal/tasks"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	TaskHandler          *tasks.Handler
	LedgerHandler        *ledger.Handler
	AuditHandler         *audit.Handler
	NotificationsHandler *notifications.Handler
	Metrics              *observability.Metrics
	HealthCheck          func(w http.ResponseWriter, r *http.Request)
}

// NewRouter constructs the chi.Router with taskmesh defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	if params.HealthCheck != nil {
		r.Get("/healthz", params.HealthCheck)
	} else {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}

	r.Route("/api", func(r chi.Router) {
		if params.LedgerHandler != nil {
			r.Route("/accounts", params.LedgerHandler.MountAccountRoutes)
			r.Route("/wallet", params.LedgerHandler.MountWalletRoutes)
		}
		if params.TaskHandler != nil {
			r.Route("/tasks", params.TaskHandler.MountRoutes)
		}
		if params.NotificationsHandler != nil {
			r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			r.Route("/audit", params.AuditHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
