package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func encodePNG(t testing.TB, w, h int) *bytes.Buffer {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestSaveCustom(t *testing.T) {
	t.Parallel()

	thumbs, err := NewThumbnails(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	ref, err := thumbs.SaveCustom("v1", encodePNG(t, 100, 80))
	if err != nil {
		t.Fatalf("SaveCustom failed: %v", err)
	}
	if ref != "v1_custom.jpg" {
		t.Errorf("ref = %q, want v1_custom.jpg", ref)
	}

	path, err := thumbs.Path(ref)
	if err != nil {
		t.Fatal(err)
	}
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("stored thumbnail is not a readable image: %v", err)
	}
	// Small uploads keep their native size.
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 80 {
		t.Errorf("bounds = %v, want 100x80", img.Bounds())
	}
}

func TestSaveCustomBoundsLargeImages(t *testing.T) {
	t.Parallel()

	thumbs, err := NewThumbnails(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	ref, err := thumbs.SaveCustom("v1", encodePNG(t, 1920, 1080))
	if err != nil {
		t.Fatal(err)
	}

	path, _ := thumbs.Path(ref)
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() > maxThumbEdge || img.Bounds().Dy() > maxThumbEdge {
		t.Errorf("bounds = %v, want fit inside %dx%d", img.Bounds(), maxThumbEdge, maxThumbEdge)
	}
}

func TestSaveCustomRejectsGarbage(t *testing.T) {
	t.Parallel()

	thumbs, err := NewThumbnails(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := thumbs.SaveCustom("v1", bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected decode error for non-image data")
	}
}

func TestRemoveCustom(t *testing.T) {
	t.Parallel()

	thumbs, err := NewThumbnails(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	ref, err := thumbs.SaveCustom("v1", encodePNG(t, 32, 32))
	if err != nil {
		t.Fatal(err)
	}
	if err := thumbs.RemoveCustom("v1"); err != nil {
		t.Fatalf("RemoveCustom failed: %v", err)
	}

	path, _ := thumbs.Path(ref)
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("thumbnail file still present after RemoveCustom")
	}

	// Removing again is a no-op, not an error.
	if err := thumbs.RemoveCustom("v1"); err != nil {
		t.Errorf("RemoveCustom on missing file = %v", err)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	thumbs, err := NewThumbnails(dir)
	if err != nil {
		t.Fatal(err)
	}

	bad := []string{
		"",
		"../etc/passwd",
		"a/b.jpg",
		`a\b.jpg`,
	}
	for _, ref := range bad {
		if _, err := thumbs.Path(ref); !errors.Is(err, ErrBadRef) {
			t.Errorf("Path(%q) = %v, want ErrBadRef", ref, err)
		}
	}

	got, err := thumbs.Path("v1_custom.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "v1_custom.jpg") {
		t.Errorf("Path = %q", got)
	}
}
