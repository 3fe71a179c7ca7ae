package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/tresmil/internal/middleware"
)

// Recovery creates panic recovery middleware for the web routes.
// Returns a plain text error page.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	if r.Header.Get("Upgrade") != "" {
		// The connection may already be hijacked
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte("Something went wrong. Reload the page to rejoin the lobby.\n"))
}
