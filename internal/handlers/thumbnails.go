package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"video-library/internal/logging"
)

const maxThumbnailUpload = 10 << 20 // 10 MB

// UploadThumbnail accepts raw image bytes as the request body and
// installs them as the video's custom thumbnail.
func (h *Handlers) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if _, err := h.store.GetVideo(ctx, id); err != nil {
		writeStoreError(w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxThumbnailUpload)
	ref, err := h.thumbs.SaveCustom(id, body)
	if err != nil {
		writeJSONError(w, "invalid image", http.StatusBadRequest)
		return
	}

	if err := h.store.SetCustomThumb(ctx, id, ref); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, map[string]string{"thumbnailUrl": "/api/thumbnail/" + id})
}

// DeleteThumbnail removes the custom thumbnail, reverting the video to
// its auto-captured one if present.
func (h *Handlers) DeleteThumbnail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if err := h.store.SetCustomThumb(ctx, id, ""); err != nil {
		writeStoreError(w, err)
		return
	}
	if err := h.thumbs.RemoveCustom(id); err != nil {
		logging.Warn("Failed to remove custom thumbnail file for %s: %v", id, err)
	}
	writeJSONStatus(w, "ok")
}

// ServeThumbnail serves the custom thumbnail if set, otherwise the auto
// one. A video with neither gets a frame captured on first request.
func (h *Handlers) ServeThumbnail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	video, err := h.store.GetVideo(ctx, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	ref := video.ThumbRef()
	if ref == "" {
		videoPath := filepath.Join(h.mediaDir, filepath.FromSlash(video.RelativePath))
		ref, err = h.thumbs.CaptureAuto(ctx, id, videoPath)
		if err != nil {
			logging.Debug("Frame capture failed for %s: %v", id, err)
			writeJSONError(w, "no thumbnail available", http.StatusNotFound)
			return
		}
		if err := h.store.SetAutoThumb(ctx, id, ref); err != nil {
			writeStoreError(w, err)
			return
		}
	}

	path, err := h.thumbs.Path(ref)
	if err != nil {
		logging.Error("Bad thumbnail reference for %s: %v", id, err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "max-age=3600")
	http.ServeFile(w, r, path)
}
