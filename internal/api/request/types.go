package request

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// DefaultHistoryLimit is used when a history request names no limit
const DefaultHistoryLimit = 20

// HistoryQuery holds the query parameters of a game history request
type HistoryQuery struct {
	Limit int
}

// ParseHistoryQuery reads ?limit=N. A missing or non-positive limit falls back
// to DefaultHistoryLimit; a non-numeric one is rejected.
func ParseHistoryQuery(r *http.Request) (HistoryQuery, error) {
	q := HistoryQuery{Limit: DefaultHistoryLimit}
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return q, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return q, fmt.Errorf("limit must be an integer, got %q", raw)
	}
	if limit > 0 {
		q.Limit = limit
	}
	return q, nil
}

// RefreshSecret extracts the cache refresh secret from ?secret= or the
// X-Refresh-Secret header
func RefreshSecret(r *http.Request) string {
	if secret := r.URL.Query().Get("secret"); secret != "" {
		return secret
	}
	return r.Header.Get("X-Refresh-Secret")
}
