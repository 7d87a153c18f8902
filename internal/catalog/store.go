package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"video-library/internal/logging"
	"video-library/internal/metrics"
)

// Default timeout for catalog store operations
const defaultTimeout = 5 * time.Second

// ErrNotFound is returned when a query or mutation targets an id that is
// not in the catalog.
var ErrNotFound = errors.New("catalog: not found")

var logger = logging.ForComponent("catalog")

// Store manages all durable state for the video library: video records,
// playlists, history, settings and the admin account.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex

	// txStarts tracks when each open batch transaction began, keyed by
	// the *sql.Tx, so interleaved batches time themselves independently.
	txStarts sync.Map
}

// Open opens (creating if needed) the catalog database at dbPath.
// The parent directory must already exist and be writable.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	logger.Info("Catalog path: %s", dbPath)

	// WAL mode allows queries to interleave with scan inserts;
	// busy_timeout prevents "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("failed to close catalog after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to catalog database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("failed to close catalog after schema failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	logger.Info("Catalog initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	-- Video records, one per discovered media file.
	-- id is a stable hash of the relative path.
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		filename TEXT NOT NULL,
		folder_path TEXT NOT NULL,
		relative_path TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		last_seen_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		view_count INTEGER NOT NULL DEFAULT 0,
		is_favorite INTEGER NOT NULL DEFAULT 0,
		position_seconds REAL NOT NULL DEFAULT 0,
		duration_seconds REAL NOT NULL DEFAULT 0,
		custom_thumb TEXT,
		auto_thumb TEXT,
		title TEXT NOT NULL DEFAULT '',
		release_date TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		channel TEXT NOT NULL DEFAULT '',
		external_id TEXT NOT NULL DEFAULT '',
		provenance TEXT NOT NULL DEFAULT 'none',
		user_edited INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_videos_folder ON videos(folder_path);
	CREATE INDEX IF NOT EXISTS idx_videos_name ON videos(display_name COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_videos_created ON videos(created_at);
	CREATE INDEX IF NOT EXISTS idx_videos_favorite ON videos(is_favorite);

	-- Subtitle sidecars, ordered per video.
	CREATE TABLE IF NOT EXISTS subtitles (
		video_id TEXT NOT NULL,
		path TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT '',
		label TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE,
		UNIQUE(video_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_subtitles_video ON subtitles(video_id);

	-- Playlists. Names are not unique; "Watch Later" is reserved and
	-- reused idempotently.
	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE TABLE IF NOT EXISTS playlist_videos (
		playlist_id TEXT NOT NULL,
		video_id TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (playlist_id) REFERENCES playlists(id) ON DELETE CASCADE,
		UNIQUE(playlist_id, video_id)
	);

	CREATE INDEX IF NOT EXISTS idx_playlist_videos_playlist ON playlist_videos(playlist_id);
	CREATE INDEX IF NOT EXISTS idx_playlist_videos_video ON playlist_videos(video_id);

	-- Watch history: one row per video, watched_at moves on re-watch.
	CREATE TABLE IF NOT EXISTS history (
		video_id TEXT PRIMARY KEY,
		watched_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_watched ON history(watched_at);

	-- Key/value settings.
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT
	);

	-- Single admin account and sessions.
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL UNIQUE,
		expires_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_token ON sessions(token);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	return s.runMigrations(ctx)
}

// runMigrations applies incremental schema migrations.
func (s *Store) runMigrations(ctx context.Context) error {
	// Migration 1: add duration_seconds for catalogs created before probing.
	var columnExists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM pragma_table_info('videos')
		WHERE name='duration_seconds'
	`).Scan(&columnExists)
	if err != nil {
		return fmt.Errorf("failed to check for duration_seconds column: %w", err)
	}

	if !columnExists {
		logger.Info("Migrating catalog: adding duration_seconds column to videos table")
		_, err = s.db.ExecContext(ctx, `
			ALTER TABLE videos ADD COLUMN duration_seconds REAL NOT NULL DEFAULT 0
		`)
		if err != nil {
			return fmt.Errorf("failed to add duration_seconds column: %w", err)
		}
	}

	// Migration 2: add user_edited for catalogs that predate provenance
	// tracking. Records with any descriptive field set are treated as
	// user-edited so a later scan cannot revert them.
	var userEditedExists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM pragma_table_info('videos')
		WHERE name='user_edited'
	`).Scan(&userEditedExists)
	if err != nil {
		return fmt.Errorf("failed to check for user_edited column: %w", err)
	}

	if !userEditedExists {
		logger.Info("Migrating catalog: adding user_edited column to videos table")
		_, err = s.db.ExecContext(ctx, `
			ALTER TABLE videos ADD COLUMN user_edited INTEGER NOT NULL DEFAULT 0
		`)
		if err != nil {
			return fmt.Errorf("failed to add user_edited column: %w", err)
		}
		_, err = s.db.ExecContext(ctx, `
			UPDATE videos SET user_edited = 1
			WHERE title != '' OR description != '' OR tags != ''
		`)
		if err != nil {
			return fmt.Errorf("failed to initialize user_edited values: %w", err)
		}
	}

	return nil
}

// Close closes the catalog database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginBatch starts a transaction for batched scan inserts.
// The caller is responsible for calling EndBatch when done.
func (s *Store) BeginBatch() (*sql.Tx, error) {
	s.mu.Lock()
	txStart := time.Now()

	// Background context: the transaction lifetime is managed by EndBatch,
	// a timeout context would cancel it the moment this function returns.
	tx, err := s.db.BeginTx(context.Background(), nil)
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	s.txStarts.Store(tx, txStart)
	return tx, nil
}

// EndBatch commits or rolls back a transaction depending on err.
func (s *Store) EndBatch(tx *sql.Tx, err error) error {
	txStart := time.Now()
	if v, ok := s.txStarts.LoadAndDelete(tx); ok {
		txStart = v.(time.Time)
	}
	duration := time.Since(txStart).Seconds()

	if err != nil {
		metrics.DBQueryDuration.WithLabelValues("batch_rollback").Observe(duration)
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBQueryDuration.WithLabelValues("batch_commit").Observe(duration)
	return tx.Commit()
}

// recordQuery records catalog store query metrics.
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil && !errors.Is(err, ErrNotFound) {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics refreshes connection gauge metrics.
func (s *Store) UpdateDBMetrics() {
	stats := s.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}
