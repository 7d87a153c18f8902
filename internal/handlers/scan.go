package handlers

import (
	"errors"
	"net/http"

	"video-library/internal/scanner"
)

// StartScan launches a background scan. A run already in progress is a
// conflict, not an error to retry blindly.
func (h *Handlers) StartScan(w http.ResponseWriter, r *http.Request) {
	mode, ok := scanner.ParseMode(r.URL.Query().Get("mode"))
	if !ok {
		writeJSONError(w, "invalid mode", http.StatusBadRequest)
		return
	}

	if err := h.scn.Start(mode); err != nil {
		if errors.Is(err, scanner.ErrScanInProgress) {
			writeJSONError(w, "already_running", http.StatusConflict)
			return
		}
		writeJSONError(w, "failed to start scan", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{
		"status": "started",
		"mode":   string(mode),
	})
}

// ScanStatus reports the scanner state and the last completed report.
func (h *Handlers) ScanStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"state":      h.scn.State().String(),
		"lastReport": h.scn.LastReport(),
	})
}
