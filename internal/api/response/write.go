package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response. History and diagnostics change with every
// finished game, so responses are marked no-store.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// List writes a 200 JSON array, encoding an empty list as [] rather than null
func List[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	JSON(w, http.StatusOK, items)
}
