package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/poolhall/tablequeue/internal/api/handler"
	"github.com/poolhall/tablequeue/internal/api/middleware"
	"github.com/poolhall/tablequeue/internal/notify"
	"github.com/poolhall/tablequeue/internal/services/match"
	"github.com/poolhall/tablequeue/internal/services/orchestrator"
	"github.com/poolhall/tablequeue/internal/services/queue"
	"github.com/poolhall/tablequeue/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Registry        *registry.Service
	QueueController *queue.Controller
	MatchController *match.Controller
	Orchestrator    *orchestrator.Service
	Notifier        notify.Notifier
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.Registry)
	actionHandler := handler.NewActionHandler(cfg.Registry, cfg.Orchestrator, cfg.Notifier, cfg.Logger)
	statusHandler := handler.NewStatusHandler(cfg.QueueController, cfg.MatchController)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Player routes
	api.HandleFunc("/players", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/{contact}", playerHandler.Get).Methods(http.MethodGet)

	// Action dispatch
	api.HandleFunc("/actions", actionHandler.Dispatch).Methods(http.MethodPost)

	// Read-only state
	api.HandleFunc("/queue", statusHandler.GetQueue).Methods(http.MethodGet)
	api.HandleFunc("/games/current", statusHandler.GetCurrentGame).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
