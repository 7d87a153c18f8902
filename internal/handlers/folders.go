package handlers

import (
	"net/http"

	"video-library/internal/catalog"
	"video-library/internal/folders"
)

// ListFolders resolves one level of the folder hierarchy. With no
// parent it returns the top-level folders; with one it returns the
// direct children. Every entry carries a representative thumbnail when
// any contained video has one.
func (h *Handlers) ListFolders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parent := r.URL.Query().Get("parent")

	paths, err := h.store.DistinctFolders(ctx)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if !folders.Exists(paths, parent) {
		writeJSONError(w, "unknown folder", http.StatusNotFound)
		return
	}

	var names []string
	if parent == "" {
		names = folders.TopLevel(paths)
	} else {
		names = folders.Children(paths, parent)
	}

	entries := make([]catalog.FolderEntry, 0, len(names))
	for _, name := range names {
		thumb, err := h.store.FolderThumbnail(ctx, folders.Join(parent, name))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		entries = append(entries, catalog.FolderEntry{Name: name, ThumbnailURL: thumb})
	}
	writeJSON(w, entries)
}
