package catalog

import (
	"context"
	"fmt"
	"testing"
)

func TestQueryVideosPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		insertTestVideo(t, store, fmt.Sprintf("vid%02d", i), fmt.Sprintf("clip%02d.mp4", i))
	}

	seen := make(map[string]bool)
	for page := 1; ; page++ {
		result, err := store.QueryVideos(ctx, VideoQuery{Page: page, PageSize: 10})
		if err != nil {
			t.Fatalf("QueryVideos page %d failed: %v", page, err)
		}
		if result.TotalItems != 25 {
			t.Fatalf("TotalItems = %d, want 25", result.TotalItems)
		}
		if result.TotalPages != 3 {
			t.Fatalf("TotalPages = %d, want 3", result.TotalPages)
		}
		for _, v := range result.Items {
			if seen[v.ID] {
				t.Errorf("video %s appeared on more than one page", v.ID)
			}
			seen[v.ID] = true
		}
		if page >= result.TotalPages {
			break
		}
	}
	if len(seen) != 25 {
		t.Errorf("pages covered %d videos, want all 25", len(seen))
	}
}

func TestQueryVideosClampsPageParams(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store := setupTestStore(t)
	ctx := context.Background()
	insertTestVideo(t, store, "v1", "a.mp4")

	result, err := store.QueryVideos(ctx, VideoQuery{Page: -5, PageSize: 100000})
	if err != nil {
		t.Fatalf("QueryVideos failed: %v", err)
	}
	if result.Page != 1 {
		t.Errorf("Page = %d, want clamp to 1", result.Page)
	}
	if result.PageSize != maxPageSize {
		t.Errorf("PageSize = %d, want clamp to %d", result.PageSize, maxPageSize)
	}
}

func TestQueryVideosFolderScoping(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "Action/one.mp4")
	insertTestVideo(t, store, "v2", "Action/Classics/two.mp4")
	insertTestVideo(t, store, "v3", "ActionFigures/three.mp4")
	insertTestVideo(t, store, "v4", "four.mp4")

	result, err := store.QueryVideos(ctx, VideoQuery{Folder: "Action"})
	if err != nil {
		t.Fatalf("QueryVideos failed: %v", err)
	}
	if result.TotalItems != 2 {
		t.Fatalf("folder Action matched %d videos, want 2", result.TotalItems)
	}
	for _, v := range result.Items {
		if v.FolderPath == "ActionFigures" {
			t.Error("sibling folder with shared prefix leaked into scope")
		}
	}
}

func TestQueryVideosSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "Holiday Trip.mp4")
	insertTestVideo(t, store, "v2", "birthday.mp4")
	rec := insertTestVideo(t, store, "v3", "untagged.mp4")

	rec.Tags = "holiday, beach"
	rec.Provenance = ProvenanceApp
	if err := store.SaveMetadata(ctx, rec); err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}

	result, err := store.QueryVideos(ctx, VideoQuery{Search: "HOLIDAY"})
	if err != nil {
		t.Fatalf("QueryVideos failed: %v", err)
	}
	if result.TotalItems != 2 {
		t.Errorf("search matched %d videos, want 2 (name and tag hits)", result.TotalItems)
	}
}

func TestQueryVideosSortByName(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "charlie.mp4")
	insertTestVideo(t, store, "v2", "alpha.mp4")
	insertTestVideo(t, store, "v3", "bravo.mp4")

	result, err := store.QueryVideos(ctx, VideoQuery{Sort: SortByName, Order: SortAsc})
	if err != nil {
		t.Fatalf("QueryVideos failed: %v", err)
	}
	want := []string{"alpha", "bravo", "charlie"}
	for i, v := range result.Items {
		if v.DisplayName != want[i] {
			t.Errorf("item %d = %s, want %s", i, v.DisplayName, want[i])
		}
	}
}

func TestQueryVideosFavoritesFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "a.mp4")
	insertTestVideo(t, store, "v2", "b.mp4")
	if _, err := store.ToggleFavorite(ctx, "v2"); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}

	result, err := store.QueryVideos(ctx, VideoQuery{FavoritesOnly: true})
	if err != nil {
		t.Fatalf("QueryVideos failed: %v", err)
	}
	if result.TotalItems != 1 || result.Items[0].ID != "v2" {
		t.Errorf("favorites filter returned %+v, want only v2", result.Items)
	}
}

func TestQueryVideosHistoryOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "a.mp4")
	insertTestVideo(t, store, "v2", "b.mp4")
	insertTestVideo(t, store, "v3", "c.mp4")

	for _, id := range []string{"v3", "v1"} {
		if err := store.RecordView(ctx, id); err != nil {
			t.Fatalf("RecordView failed: %v", err)
		}
	}

	result, err := store.QueryVideos(ctx, VideoQuery{HistoryOnly: true})
	if err != nil {
		t.Fatalf("QueryVideos failed: %v", err)
	}
	if result.TotalItems != 2 {
		t.Fatalf("history filter matched %d, want 2", result.TotalItems)
	}
	if result.Items[0].ID != "v1" || result.Items[1].ID != "v3" {
		t.Errorf("history order = [%s %s], want most recent first", result.Items[0].ID, result.Items[1].ID)
	}
}

func TestDistinctFoldersAndThumbnail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "Action/one.mp4")
	insertTestVideo(t, store, "v2", "Drama/two.mp4")

	dirs, err := store.DistinctFolders(ctx)
	if err != nil {
		t.Fatalf("DistinctFolders failed: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("DistinctFolders = %v, want 2 entries", dirs)
	}

	// No thumbnails yet: empty, not an error.
	thumb, err := store.FolderThumbnail(ctx, "Action")
	if err != nil {
		t.Fatalf("FolderThumbnail failed: %v", err)
	}
	if thumb != "" {
		t.Errorf("FolderThumbnail = %q, want empty", thumb)
	}

	if err := store.SetAutoThumb(ctx, "v1", "v1_auto.jpg"); err != nil {
		t.Fatalf("SetAutoThumb failed: %v", err)
	}
	thumb, err = store.FolderThumbnail(ctx, "Action")
	if err != nil {
		t.Fatalf("FolderThumbnail failed: %v", err)
	}
	if thumb != "/api/thumbnail/v1" {
		t.Errorf("FolderThumbnail = %q, want /api/thumbnail/v1", thumb)
	}
}
