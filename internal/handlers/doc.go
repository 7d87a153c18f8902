// Package handlers provides the HTTP request handlers for the library
// API.
//
// It covers:
//   - Catalog queries: pagination, filtering, sorting
//   - Folder navigation
//   - Scan control and status
//   - Per-video mutations: favorite, view, progress, metadata, thumbnail
//   - Streaming and subtitle serving
//   - Playlists and the Watch Later toggle
//   - Settings, auth, health and version endpoints
package handlers
