package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

func (h *Handlers) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.store.ListPlaylists(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, playlists)
}

type createPlaylistRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSONError(w, "name is required", http.StatusBadRequest)
		return
	}

	playlist, err := h.store.CreatePlaylist(r.Context(), req.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, playlist)
}

func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.store.GetPlaylist(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, playlist)
}

type playlistVideoRequest struct {
	VideoID string `json:"videoId"`
}

// AddPlaylistVideo appends a video to a playlist. Adding a video that
// is already a member is a no-op, not an error.
func (h *Handlers) AddPlaylistVideo(w http.ResponseWriter, r *http.Request) {
	var req playlistVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.VideoID == "" {
		writeJSONError(w, "videoId is required", http.StatusBadRequest)
		return
	}

	if err := h.store.AddToPlaylist(r.Context(), mux.Vars(r)["id"], req.VideoID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONStatus(w, "ok")
}

func (h *Handlers) RemovePlaylistVideo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.store.RemoveFromPlaylist(r.Context(), vars["id"], vars["videoId"]); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONStatus(w, "ok")
}

// ToggleWatchLater adds the video to the reserved Watch Later playlist,
// or removes it when already present. The playlist itself is created
// lazily on first use.
func (h *Handlers) ToggleWatchLater(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := mux.Vars(r)["videoId"]

	playlist, err := h.store.EnsureWatchLater(ctx)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	member, err := h.store.InPlaylist(ctx, playlist.ID, videoID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if member {
		err = h.store.RemoveFromPlaylist(ctx, playlist.ID, videoID)
	} else {
		err = h.store.AddToPlaylist(ctx, playlist.ID, videoID)
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"playlistId": playlist.ID,
		"inList":     !member,
	})
}
