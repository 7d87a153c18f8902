package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"video-library/internal/catalog"
	"video-library/internal/logging"
)

// ListVideos serves the query engine: filtering, sorting and pagination
// in one endpoint.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := catalog.VideoQuery{
		Folder:        params.Get("folder"),
		Search:        params.Get("search"),
		FavoritesOnly: params.Get("favorites") == "true",
		HistoryOnly:   params.Get("history") == "true",
		PlaylistID:    params.Get("playlist"),
		Sort:          catalog.SortField(params.Get("sort")),
		Order:         catalog.SortOrder(params.Get("order")),
	}
	if v := params.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, "invalid page", http.StatusBadRequest)
			return
		}
		q.Page = n
	}
	if v := params.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, "invalid pageSize", http.StatusBadRequest)
			return
		}
		q.PageSize = n
	}

	page, err := h.store.QueryVideos(r.Context(), q)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, page)
}

func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	video, err := h.store.GetVideo(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, video)
}

// ToggleFavorite flips the favorite flag and returns the new value so
// the client never has to guess.
func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	isFavorite, err := h.store.ToggleFavorite(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"isFavorite": isFavorite})
}

// RecordView bumps the view count and moves the video to the top of the
// watch history.
func (h *Handlers) RecordView(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.RecordView(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONStatus(w, "ok")
}

type progressRequest struct {
	Seconds float64 `json:"seconds"`
}

func (h *Handlers) SetProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.SetProgress(r.Context(), id, req.Seconds); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONStatus(w, "ok")
}

// UpdateMetadata applies a partial metadata edit through the reconciler
// and reports which targets were actually written.
func (h *Handlers) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var edit catalog.EditableFields
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if edit.Empty() {
		writeJSONError(w, "no fields to update", http.StatusBadRequest)
		return
	}

	video, written, err := h.reconciler.Edit(r.Context(), id, edit)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	logging.Debug("Metadata edit for %s written to %v", id, written)
	writeJSON(w, map[string]interface{}{
		"video":   video,
		"written": written,
	})
}
