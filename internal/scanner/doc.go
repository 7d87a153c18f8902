// Package scanner keeps the catalog in sync with the files under the
// media root.
//
// A quick scan registers unknown files and refreshes last-seen
// timestamps without touching descriptive metadata. A full scan
// additionally re-reads sidecar files and probes durations across a
// bounded worker pool. Files that disappear from disk are never
// removed from the catalog.
//
// Only one scan runs at a time; concurrent requests are rejected with
// ErrScanInProgress.
package scanner
