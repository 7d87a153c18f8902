// Package catalog provides the durable SQLite store for the video
// library.
//
// It owns:
//   - Video records (one per discovered media file, keyed by a stable
//     path-derived id) with favorites, view counts, playback progress,
//     thumbnails and descriptive metadata with provenance tracking
//   - Playlists with set-membership semantics
//   - Watch history (one entry per video, re-watch moves it forward)
//   - Key/value settings
//   - The single admin account and its sessions
//
// The database uses WAL mode so queries can interleave with scan inserts,
// and the schema is created on first open with incremental migrations
// applied afterwards.
package catalog
