package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// videoColumns is the canonical column list scanned by scanVideo.
const videoColumns = `id, display_name, filename, folder_path, relative_path,
	created_at, last_seen_at, view_count, is_favorite, position_seconds,
	duration_seconds, custom_thumb, auto_thumb, title, release_date, tags,
	description, channel, external_id, provenance, user_edited`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVideo(row rowScanner) (VideoRecord, error) {
	var v VideoRecord
	var createdAt, lastSeenAt int64
	var customThumb, autoThumb sql.NullString

	err := row.Scan(
		&v.ID, &v.DisplayName, &v.Filename, &v.FolderPath, &v.RelativePath,
		&createdAt, &lastSeenAt, &v.ViewCount, &v.IsFavorite, &v.PositionSeconds,
		&v.DurationSeconds, &customThumb, &autoThumb, &v.Title, &v.ReleaseDate,
		&v.Tags, &v.Description, &v.Channel, &v.ExternalID, &v.Provenance,
		&v.UserEdited,
	)
	if err != nil {
		return v, err
	}

	v.CreatedAt = time.Unix(createdAt, 0)
	v.LastSeenAt = time.Unix(lastSeenAt, 0)
	if customThumb.Valid {
		v.CustomThumb = customThumb.String
	}
	if autoThumb.Valid {
		v.AutoThumb = autoThumb.String
	}
	if v.ThumbRef() != "" {
		v.ThumbnailURL = "/api/thumbnail/" + v.ID
	}
	return v, nil
}

// InsertVideo inserts a record if its id is not yet catalogued and reports
// whether a new row was created. Existing records only have their
// last_seen_at refreshed; editable fields are never touched here, which is
// what makes quick scans idempotent.
func (s *Store) InsertVideo(tx *sql.Tx, v *VideoRecord) (bool, error) {
	provenance := v.Provenance
	if provenance == "" {
		provenance = ProvenanceNone
	}

	result, err := tx.ExecContext(context.Background(), `
		INSERT INTO videos (id, display_name, filename, folder_path, relative_path, provenance)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, v.ID, v.DisplayName, v.Filename, v.FolderPath, v.RelativePath, provenance)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(context.Background(), `
		UPDATE videos SET last_seen_at = strftime('%s', 'now') WHERE id = ?
	`, v.ID); err != nil {
		return false, err
	}

	return rows > 0, nil
}

// GetVideo returns a single record, including its subtitle references.
func (s *Store) GetVideo(ctx context.Context, id string) (*VideoRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_video", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	v, scanErr := scanVideo(row)
	if errors.Is(scanErr, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, ErrNotFound
	}
	if scanErr != nil {
		err = scanErr
		return nil, scanErr
	}

	subs, subErr := s.subtitlesForVideo(ctx, id)
	if subErr != nil {
		err = subErr
		return nil, subErr
	}
	v.Subtitles = subs

	return &v, nil
}

func (s *Store) subtitlesForVideo(ctx context.Context, id string) ([]SubtitleRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, language, label FROM subtitles
		WHERE video_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []SubtitleRef
	for rows.Next() {
		var sub SubtitleRef
		if err := rows.Scan(&sub.Path, &sub.Language, &sub.Label); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// SetSubtitles replaces the ordered subtitle list for a video.
func (s *Store) SetSubtitles(tx *sql.Tx, videoID string, subs []SubtitleRef) error {
	if _, err := tx.ExecContext(context.Background(),
		`DELETE FROM subtitles WHERE video_id = ?`, videoID); err != nil {
		return err
	}
	for i, sub := range subs {
		if _, err := tx.ExecContext(context.Background(), `
			INSERT INTO subtitles (video_id, path, language, label, position)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(video_id, path) DO NOTHING
		`, videoID, sub.Path, sub.Language, sub.Label, i); err != nil {
			return err
		}
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("toggle_favorite", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, execErr := s.db.ExecContext(ctx,
		`UPDATE videos SET is_favorite = NOT is_favorite WHERE id = ?`, id)
	if execErr != nil {
		err = execErr
		return false, execErr
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = ErrNotFound
		return false, ErrNotFound
	}

	var fav bool
	if err = s.db.QueryRowContext(ctx,
		`SELECT is_favorite FROM videos WHERE id = ?`, id).Scan(&fav); err != nil {
		return false, err
	}
	return fav, nil
}

// RecordView increments the view count by exactly one and moves the video
// to the most recent position in the watch history.
func (s *Store) RecordView(ctx context.Context, id string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("record_view", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// The count bump and the history upsert commit together; a failed
	// history write must not leave the count incremented.
	tx, txErr := s.db.BeginTx(ctx, nil)
	if txErr != nil {
		err = txErr
		return txErr
	}
	defer tx.Rollback()

	result, execErr := tx.ExecContext(ctx,
		`UPDATE videos SET view_count = view_count + 1 WHERE id = ?`, id)
	if execErr != nil {
		err = execErr
		return execErr
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = ErrNotFound
		return ErrNotFound
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO history (video_id, watched_at) VALUES (?, strftime('%s', 'now'))
		ON CONFLICT(video_id) DO UPDATE SET watched_at = excluded.watched_at
	`, id); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// resumeCutoffSeconds is how close to the end a saved position may be
// before it is treated as "finished" and reset to zero.
const resumeCutoffSeconds = 10

// SetProgress overwrites the saved playback position. A value of zero
// resets the position. A position within resumeCutoffSeconds of the known
// duration is stored as zero so a finished video does not resume at its
// very end.
func (s *Store) SetProgress(ctx context.Context, id string, seconds float64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_progress", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if seconds < 0 {
		seconds = 0
	}

	var duration float64
	err = s.db.QueryRowContext(ctx,
		`SELECT duration_seconds FROM videos WHERE id = ?`, id).Scan(&duration)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if duration > 0 && seconds > duration-resumeCutoffSeconds {
		seconds = 0
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE videos SET position_seconds = ? WHERE id = ?`, seconds, id)
	return err
}

// SetDuration stores a probed duration. Zero values are kept as "unknown".
func (s *Store) SetDuration(ctx context.Context, id string, seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`UPDATE videos SET duration_seconds = ? WHERE id = ?`, seconds, id)
	return err
}

// SetCustomThumb stores (or clears, with an empty ref) the custom thumbnail
// reference, leaving any auto-generated one untouched.
func (s *Store) SetCustomThumb(ctx context.Context, id, ref string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_custom_thumb", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value interface{}
	if ref != "" {
		value = ref
	}

	result, execErr := s.db.ExecContext(ctx,
		`UPDATE videos SET custom_thumb = ? WHERE id = ?`, value, id)
	if execErr != nil {
		err = execErr
		return execErr
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = ErrNotFound
		return ErrNotFound
	}
	return nil
}

// SetAutoThumb stores the auto-generated thumbnail reference.
func (s *Store) SetAutoThumb(ctx context.Context, id, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value interface{}
	if ref != "" {
		value = ref
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE videos SET auto_thumb = ? WHERE id = ?`, value, id)
	return err
}

// SaveMetadata persists the descriptive fields, provenance and the
// user-edited marker of a reconciled record in a single statement so a
// failed call never leaves a partial write behind.
func (s *Store) SaveMetadata(ctx context.Context, v *VideoRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("save_metadata", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, execErr := s.db.ExecContext(ctx, `
		UPDATE videos SET
			title = ?, release_date = ?, tags = ?, description = ?,
			channel = ?, external_id = ?, duration_seconds = ?,
			provenance = ?, user_edited = ?
		WHERE id = ?
	`, v.Title, v.ReleaseDate, v.Tags, v.Description,
		v.Channel, v.ExternalID, v.DurationSeconds,
		v.Provenance, v.UserEdited, v.ID)
	if execErr != nil {
		err = execErr
		return execErr
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = ErrNotFound
		return ErrNotFound
	}
	return nil
}

// CountVideos returns the number of catalogued videos.
func (s *Store) CountVideos(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return count, nil
}
