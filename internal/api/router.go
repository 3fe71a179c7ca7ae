package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tresmil/internal/api/handler"
	"github.com/mcoot/tresmil/internal/api/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger *slog.Logger
	Cache  handler.HistoryCache
	Store  handler.StoreChecker
	// RefreshSecretHash is the bcrypt hash guarding POST /api/refresh-cache.
	// When empty the endpoint is open.
	RefreshSecretHash []byte
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	historyHandler := handler.NewHistoryHandler(cfg.Cache, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Store, cfg.Logger)

	// Create middleware
	secretMiddleware := middleware.RefreshSecret(cfg.RefreshSecretHash)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware. Logging runs outermost so the
	// request id is already on the context when a panic is recovered.
	api := r.PathPrefix("/api").Subrouter()
	api.Use(loggingMiddleware)
	api.Use(recoveryMiddleware)

	// History reads
	api.HandleFunc("/games/history", historyHandler.Games).Methods(http.MethodGet)
	api.HandleFunc("/players/stats", historyHandler.Players).Methods(http.MethodGet)

	// Maintenance
	maintenance := api.NewRoute().Subrouter()
	maintenance.Use(secretMiddleware)
	maintenance.HandleFunc("/refresh-cache", historyHandler.Refresh).Methods(http.MethodPost)

	// Diagnostics
	api.HandleFunc("/check-database", healthHandler.CheckDatabase).Methods(http.MethodGet)
	api.HandleFunc("/check-data-retrieval", healthHandler.CheckDataRetrieval).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	return r
}
