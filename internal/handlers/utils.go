package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"video-library/internal/catalog"
	"video-library/internal/logging"
)

// writeJSON encodes v as JSON onto the response. Encoding errors are
// logged; at that point headers are gone and nothing can be recovered.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Error("failed to encode JSON error response: %v", err)
	}
}

// writeJSONStatus writes a simple {"status": ...} response.
func writeJSONStatus(w http.ResponseWriter, status string) {
	writeJSON(w, map[string]string{"status": status})
}

// writeStoreError maps catalog errors onto HTTP statuses: a missing
// record is the caller's problem, anything else is ours.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSONError(w, "not found", http.StatusNotFound)
		return
	}
	logging.Error("catalog error: %v", err)
	writeJSONError(w, "internal error", http.StatusInternalServerError)
}
