package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/tresmil/internal/api/apierr"
	"github.com/mcoot/tresmil/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Panics are answered with a JSON INTERNAL_ERROR carrying the request id.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	err := apierr.WithRequestID(apierr.NewInternalError(), middleware.RequestID(r.Context()))
	apierr.WriteError(w, err)
}
