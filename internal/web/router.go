package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tresmil/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger    *slog.Logger
	WebSocket http.Handler // game protocol endpoint mounted at /ws
	StaticDir string       // Path to the browser client; empty disables static files
}

// NewRouter creates the router for the game websocket and the browser client
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// Apply global middleware to all routes
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	if cfg.WebSocket != nil {
		r.Handle("/ws", cfg.WebSocket).Methods(http.MethodGet)
	}

	// Static files, including index.html at /
	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir))).Methods(http.MethodGet, http.MethodHead)
	}

	return r
}
