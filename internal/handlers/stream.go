package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"video-library/internal/mediatypes"
)

// Stream serves the raw video file. http.ServeFile handles byte-range
// requests, which is all the seeking support browsers need.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	video, err := h.store.GetVideo(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	path := filepath.Join(h.mediaDir, filepath.FromSlash(video.RelativePath))
	if _, err := os.Stat(path); err != nil {
		// The record outlives the file; the catalog keeps orphans.
		writeJSONError(w, "file not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", mediatypes.GetMimeType(video.Filename))
	http.ServeFile(w, r, path)
}

// Subtitle serves a subtitle sidecar referenced by a catalog record. The
// path must match one of the record's known subtitle references, which
// keeps arbitrary paths out of reach.
func (h *Handlers) Subtitle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	video, err := h.store.GetVideo(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	requested := r.URL.Query().Get("path")
	for _, sub := range video.Subtitles {
		if sub.Path != requested {
			continue
		}
		http.ServeFile(w, r, filepath.Join(h.mediaDir, filepath.FromSlash(sub.Path)))
		return
	}
	writeJSONError(w, "not found", http.StatusNotFound)
}
