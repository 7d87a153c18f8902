package sidecar

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"video-library/internal/catalog"
)

func setupReconciler(t testing.TB) (*Reconciler, *catalog.Store, string) {
	t.Helper()

	tmpDir := t.TempDir()
	mediaDir := filepath.Join(tmpDir, "media")
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		t.Fatal(err)
	}

	store, err := catalog.Open(context.Background(), filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewReconciler(store, mediaDir), store, mediaDir
}

func insertRecord(t testing.TB, store *catalog.Store, id, relPath string, prov catalog.Provenance) {
	t.Helper()

	rec := &catalog.VideoRecord{
		ID:           id,
		DisplayName:  "clip",
		Filename:     filepath.Base(relPath),
		FolderPath:   catalog.RootFolder,
		RelativePath: relPath,
		Provenance:   prov,
	}
	tx, err := store.BeginBatch()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.InsertVideo(tx, rec); err != nil {
		t.Fatal(err)
	}
	if err := store.EndBatch(tx, nil); err != nil {
		t.Fatal(err)
	}
}

func TestRefreshMergesSidecar(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rec, store, mediaDir := setupReconciler(t)
	ctx := context.Background()

	nfo := `<movie><title>Imported Title</title><premiered>2018-02-03</premiered></movie>`
	if err := os.WriteFile(filepath.Join(mediaDir, "clip.nfo"), []byte(nfo), 0o644); err != nil {
		t.Fatal(err)
	}
	insertRecord(t, store, "v1", "clip.mp4", catalog.ProvenanceExternal)

	stored, err := store.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Refresh(ctx, stored); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	got, err := store.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Imported Title" || got.ReleaseDate != "2018-02-03" {
		t.Errorf("sidecar did not merge: %+v", got)
	}
	if got.Provenance != catalog.ProvenanceExternal {
		t.Errorf("Provenance = %s, want external", got.Provenance)
	}
}

func TestEditWritesSelfAuthoredSidecar(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rec, store, mediaDir := setupReconciler(t)
	ctx := context.Background()

	insertRecord(t, store, "v1", "clip.mp4", catalog.ProvenanceNone)

	title := "My Title"
	updated, written, err := rec.Edit(ctx, "v1", catalog.EditableFields{Title: &title})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if updated.Provenance != catalog.ProvenanceApp {
		t.Errorf("Provenance = %s, want app", updated.Provenance)
	}
	if len(written) != 2 {
		t.Errorf("written = %v, want catalog and sidecar", written)
	}

	meta, err := Read(filepath.Join(mediaDir, "clip.nfo"))
	if err != nil {
		t.Fatalf("sidecar file was not written: %v", err)
	}
	if meta.Title != "My Title" {
		t.Errorf("sidecar Title = %q", meta.Title)
	}
}

func TestEditNeverTouchesExternalSidecar(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rec, store, mediaDir := setupReconciler(t)
	ctx := context.Background()

	original := `<movie><title>External Truth</title></movie>`
	nfoPath := filepath.Join(mediaDir, "clip.nfo")
	if err := os.WriteFile(nfoPath, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}
	insertRecord(t, store, "v1", "clip.mp4", catalog.ProvenanceExternal)

	title := "Catalog Only"
	_, written, err := rec.Edit(ctx, "v1", catalog.EditableFields{Title: &title})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if len(written) != 1 || written[0] != TargetCatalog {
		t.Errorf("written = %v, want catalog only", written)
	}

	data, err := os.ReadFile(nfoPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != original {
		t.Error("external sidecar file was modified")
	}

	got, err := store.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Catalog Only" {
		t.Errorf("catalog Title = %q", got.Title)
	}
}

func TestEditedRecordResistsRescan(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rec, store, mediaDir := setupReconciler(t)
	ctx := context.Background()

	nfo := `<movie><title>Sidecar Title</title></movie>`
	if err := os.WriteFile(filepath.Join(mediaDir, "clip.nfo"), []byte(nfo), 0o644); err != nil {
		t.Fatal(err)
	}
	insertRecord(t, store, "v1", "clip.mp4", catalog.ProvenanceExternal)

	title := "User Wins"
	if _, _, err := rec.Edit(ctx, "v1", catalog.EditableFields{Title: &title}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	stored, err := store.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Refresh(ctx, stored); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	got, err := store.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "User Wins" {
		t.Errorf("Title = %q, rescan clobbered a user edit", got.Title)
	}
}
