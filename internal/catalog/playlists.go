package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CreatePlaylist creates a playlist with a fresh id. Duplicate names are
// allowed; only "Watch Later" is reserved (see EnsureWatchLater).
func (s *Store) CreatePlaylist(ctx context.Context, name string) (*Playlist, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_playlist", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	p := &Playlist{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
		VideoIDs:  []string{},
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, created_at) VALUES (?, ?, ?)
	`, p.ID, p.Name, p.CreatedAt.Unix())
	if err != nil {
		return nil, err
	}
	return p, nil
}

// EnsureWatchLater returns the reserved "Watch Later" playlist, creating it
// on first use. Repeated calls always return the same playlist.
func (s *Store) EnsureWatchLater(ctx context.Context) (*Playlist, error) {
	s.mu.RLock()
	var id string
	ctxTimeout, cancel := context.WithTimeout(ctx, defaultTimeout)
	err := s.db.QueryRowContext(ctxTimeout,
		`SELECT id FROM playlists WHERE name = ? ORDER BY created_at LIMIT 1`,
		WatchLaterName).Scan(&id)
	cancel()
	s.mu.RUnlock()

	if err == nil {
		return s.GetPlaylist(ctx, id)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return s.CreatePlaylist(ctx, WatchLaterName)
}

// GetPlaylist returns a playlist with its ordered membership.
func (s *Store) GetPlaylist(ctx context.Context, id string) (*Playlist, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_playlist", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p Playlist
	var createdAt int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM playlists WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(createdAt, 0)

	rows, queryErr := s.db.QueryContext(ctx, `
		SELECT video_id FROM playlist_videos WHERE playlist_id = ? ORDER BY position
	`, id)
	if queryErr != nil {
		err = queryErr
		return nil, queryErr
	}
	defer rows.Close()

	p.VideoIDs = []string{}
	for rows.Next() {
		var vid string
		if err = rows.Scan(&vid); err != nil {
			return nil, err
		}
		p.VideoIDs = append(p.VideoIDs, vid)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlaylists returns all playlists with their memberships.
func (s *Store) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_playlists", start, err) }()

	s.mu.RLock()
	ctxTimeout, cancel := context.WithTimeout(ctx, defaultTimeout)
	rows, queryErr := s.db.QueryContext(ctxTimeout,
		`SELECT id FROM playlists ORDER BY created_at`)
	if queryErr != nil {
		cancel()
		s.mu.RUnlock()
		err = queryErr
		return nil, queryErr
	}

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			cancel()
			s.mu.RUnlock()
			return nil, err
		}
		ids = append(ids, id)
	}
	err = rows.Err()
	rows.Close()
	cancel()
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	playlists := []Playlist{}
	for _, id := range ids {
		p, getErr := s.GetPlaylist(ctx, id)
		if getErr != nil {
			err = getErr
			return nil, getErr
		}
		playlists = append(playlists, *p)
	}
	return playlists, nil
}

// AddToPlaylist adds a video to a playlist. Adding an existing member is a
// no-op; the video keeps its original position.
func (s *Store) AddToPlaylist(ctx context.Context, playlistID, videoID string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("add_to_playlist", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err = s.requirePlaylist(ctx, playlistID); err != nil {
		return err
	}
	if err = s.requireVideo(ctx, videoID); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO playlist_videos (playlist_id, video_id, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM playlist_videos WHERE playlist_id = ?))
		ON CONFLICT(playlist_id, video_id) DO NOTHING
	`, playlistID, videoID, playlistID)
	return err
}

// RemoveFromPlaylist removes a video from a playlist. Removing a
// non-member is a no-op.
func (s *Store) RemoveFromPlaylist(ctx context.Context, playlistID, videoID string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("remove_from_playlist", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err = s.requirePlaylist(ctx, playlistID); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`,
		playlistID, videoID)
	return err
}

// InPlaylist reports whether a video is a member of a playlist.
func (s *Store) InPlaylist(ctx context.Context, playlistID, videoID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`,
		playlistID, videoID).Scan(&count)
	return count > 0, err
}

// requirePlaylist returns ErrNotFound if the playlist does not exist.
// Caller must hold the lock.
func (s *Store) requirePlaylist(ctx context.Context, id string) error {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM playlists WHERE id = ?`, id).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// requireVideo returns ErrNotFound if the video does not exist.
// Caller must hold the lock.
func (s *Store) requireVideo(ctx context.Context, id string) error {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM videos WHERE id = ?`, id).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
