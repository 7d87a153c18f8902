// Package startup handles configuration loading and lifecycle logging.
//
// All configuration comes from environment variables, optionally seeded
// from a .env file:
//
//   - MEDIA_DIR: path to the media library root (default: /media)
//   - DATA_DIR: path for the catalog database and thumbnails (default: /data)
//   - PORT: HTTP server port (default: 8080)
//   - WATCH_ENABLED: react to filesystem changes with quick scans (default: true)
//   - SCAN_ON_START: run a quick scan at startup (default: true)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//
// Build-time variables are injected via ldflags and exposed through
// [GetBuildInfo].
package startup
