package sidecar

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	meta, found, err := Load(filepath.Join(t.TempDir(), "nope.nfo"))
	if err != nil {
		t.Fatalf("Load on missing file should not error, got %v", err)
	}
	if found {
		t.Error("found should be false for a missing file")
	}
	if meta != nil {
		t.Error("meta should be nil for a missing file")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.nfo")
	if err := os.WriteFile(path, []byte("<movie><title>unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, found, err := Load(path)
	if err == nil {
		t.Error("malformed sidecar should return an error")
	}
	if !found {
		t.Error("found should be true: the file exists even though it is unreadable")
	}
}

func TestReadKodiMovie(t *testing.T) {
	t.Parallel()

	content := `<?xml version="1.0" encoding="UTF-8"?>
<movie>
  <title>Holiday Trip</title>
  <premiered>2019-07-14</premiered>
  <plot>Two weeks in the mountains.</plot>
  <studio>Home Videos</studio>
  <tag>family</tag>
  <tag>travel</tag>
  <uniqueid type="youtube">yt123</uniqueid>
</movie>`

	path := filepath.Join(t.TempDir(), "movie.nfo")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	meta, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if meta.Title != "Holiday Trip" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.ReleaseDate != "2019-07-14" {
		t.Errorf("ReleaseDate = %q", meta.ReleaseDate)
	}
	if meta.Channel != "Home Videos" {
		t.Errorf("Channel = %q", meta.Channel)
	}
	if meta.Tags != "family,travel" {
		t.Errorf("Tags = %q", meta.Tags)
	}
	if meta.ExternalID != "yt123" {
		t.Errorf("ExternalID = %q", meta.ExternalID)
	}
}

func TestWriteThenRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.nfo")
	in := Metadata{
		Title:       "Self Authored",
		ReleaseDate: "2024-03-01",
		Tags:        "one,two",
		ExternalID:  "x9",
	}
	if err := Write(path, in); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out, err := Read(path)
	if err != nil {
		t.Fatalf("Read back failed: %v", err)
	}
	if *out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", *out, in)
	}
}
