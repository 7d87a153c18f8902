package sidecar

import (
	"context"
	"os"
	"path/filepath"

	"video-library/internal/catalog"
	"video-library/internal/logging"
	"video-library/internal/mediatypes"
)

var logger = logging.ForComponent("sidecar")

// Target names a persistence target an edit was written to, so callers
// can tell the user whether the sidecar file was updated alongside the
// catalog.
type Target string

const (
	// TargetCatalog is the catalog store.
	TargetCatalog Target = "catalog"
	// TargetSidecar is the self-authored NFO file next to the video.
	TargetSidecar Target = "sidecar"
)

// Merge applies discovered sidecar metadata to a record according to its
// provenance. It is a pure function: the caller persists the returned
// record if changed.
//
// Rules:
//   - A user-edited record is never modified, whatever the provenance.
//   - Sidecar data only populates empty fields, never replacing a value
//     already in the catalog.
//   - A sidecar discovered for a record with provenance "none" marks the
//     record external: the file predates any edit through this app and is
//     owned by whatever tool wrote it.
func Merge(rec catalog.VideoRecord, meta *Metadata) (catalog.VideoRecord, bool) {
	if meta == nil {
		return rec, false
	}
	if rec.UserEdited {
		return rec, false
	}

	changed := false
	if rec.Provenance == catalog.ProvenanceNone {
		rec.Provenance = catalog.ProvenanceExternal
		changed = true
	}

	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}
	fill(&rec.Title, meta.Title)
	fill(&rec.ReleaseDate, meta.ReleaseDate)
	fill(&rec.Description, meta.Description)
	fill(&rec.Channel, meta.Channel)
	fill(&rec.Tags, meta.Tags)
	fill(&rec.ExternalID, meta.ExternalID)

	return rec, changed
}

// ApplyEdit applies a user edit to a record and returns the persistence
// targets the edit must be written to. The catalog is always a target;
// the sidecar file is only a target when it is (or becomes) self-authored.
func ApplyEdit(rec catalog.VideoRecord, edit catalog.EditableFields) (catalog.VideoRecord, []Target) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&rec.Title, edit.Title)
	set(&rec.ReleaseDate, edit.ReleaseDate)
	set(&rec.Tags, edit.Tags)
	set(&rec.Description, edit.Description)
	set(&rec.Channel, edit.Channel)
	set(&rec.ExternalID, edit.ExternalID)
	rec.UserEdited = true

	targets := []Target{TargetCatalog}
	switch rec.Provenance {
	case catalog.ProvenanceExternal:
		// The file belongs to another tool; leave it byte-for-byte alone.
	case catalog.ProvenanceNone:
		rec.Provenance = catalog.ProvenanceApp
		targets = append(targets, TargetSidecar)
	case catalog.ProvenanceApp:
		targets = append(targets, TargetSidecar)
	}
	return rec, targets
}

// Reconciler ties the pure merge logic to the catalog store and the
// filesystem.
type Reconciler struct {
	store    *catalog.Store
	mediaDir string
}

// NewReconciler creates a reconciler for sidecars under mediaDir.
func NewReconciler(store *catalog.Store, mediaDir string) *Reconciler {
	return &Reconciler{store: store, mediaDir: mediaDir}
}

// sidecarPath resolves the absolute sidecar path for a record.
func (r *Reconciler) sidecarPath(rec *catalog.VideoRecord) string {
	return mediatypes.SidecarPath(filepath.Join(r.mediaDir, filepath.FromSlash(rec.RelativePath)))
}

// Refresh re-reads the sidecar for a record during a full scan and merges
// it under the provenance rules. Probing the duration is best-effort; a
// probe failure never fails the refresh.
func (r *Reconciler) Refresh(ctx context.Context, rec *catalog.VideoRecord) error {
	meta, found, err := Load(r.sidecarPath(rec))
	if err != nil {
		if found {
			// Malformed sidecar: treated as absent metadata.
			logger.Warn("Ignoring unreadable sidecar for %s: %v", rec.RelativePath, err)
		} else {
			return err
		}
	}

	merged, changed := Merge(*rec, meta)

	if merged.DurationSeconds == 0 {
		videoPath := filepath.Join(r.mediaDir, filepath.FromSlash(rec.RelativePath))
		if duration, probeErr := ProbeDuration(ctx, videoPath); probeErr != nil {
			logger.Debug("Duration probe failed for %s: %v", rec.RelativePath, probeErr)
		} else if duration > 0 {
			merged.DurationSeconds = duration
			if !changed {
				// Duration is the only update; no need to rewrite the
				// metadata columns.
				*rec = merged
				return r.store.SetDuration(ctx, rec.ID, duration)
			}
		}
	}

	if !changed {
		return nil
	}

	*rec = merged
	return r.store.SaveMetadata(ctx, rec)
}

// Edit applies a user metadata edit to the record with the given id,
// persists it, and writes the self-authored sidecar when the provenance
// allows it. It returns the updated record and the targets actually
// written.
func (r *Reconciler) Edit(ctx context.Context, id string, edit catalog.EditableFields) (*catalog.VideoRecord, []Target, error) {
	rec, err := r.store.GetVideo(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	updated, targets := ApplyEdit(*rec, edit)

	if err := r.store.SaveMetadata(ctx, &updated); err != nil {
		return nil, nil, err
	}

	written := []Target{TargetCatalog}
	for _, t := range targets {
		if t != TargetSidecar {
			continue
		}
		if err := Write(r.sidecarPath(&updated), Metadata{
			Title:       updated.Title,
			ReleaseDate: updated.ReleaseDate,
			Description: updated.Description,
			Channel:     updated.Channel,
			Tags:        updated.Tags,
			ExternalID:  updated.ExternalID,
		}); err != nil {
			// The catalog write already succeeded; report the partial
			// outcome rather than failing the whole edit.
			logger.Error("Failed to write sidecar for %s: %v", updated.RelativePath, err)
			return &updated, written, nil
		}
		written = append(written, TargetSidecar)
	}

	return &updated, written, nil
}

// HasExternalSidecar reports whether a sidecar file already exists on disk
// for a newly discovered video. Used by the scanner to set the initial
// provenance of new records.
func (r *Reconciler) HasExternalSidecar(rec *catalog.VideoRecord) bool {
	_, err := os.Stat(r.sidecarPath(rec))
	return err == nil
}
