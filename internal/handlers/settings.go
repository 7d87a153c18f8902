package handlers

import (
	"encoding/json"
	"net/http"
)

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.AllSettings(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, settings)
}

// UpdateSettings upserts the provided key/value pairs.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(updates) == 0 {
		writeJSONError(w, "no settings provided", http.StatusBadRequest)
		return
	}

	for key, value := range updates {
		if err := h.store.SetSetting(r.Context(), key, value); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	writeJSONStatus(w, "ok")
}

// GetHistory returns the raw history entries, most recent first. Clients
// wanting full records use the query engine's history filter instead.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.History(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, entries)
}

// ClearHistory wipes the watch history. View counts are untouched.
func (h *Handlers) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearHistory(r.Context()); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONStatus(w, "ok")
}
