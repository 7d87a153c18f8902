package catalog

import (
	"context"
	"time"
)

// History returns the watch history, most recently watched first.
func (s *Store) History(ctx context.Context) ([]HistoryEntry, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("history", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, queryErr := s.db.QueryContext(ctx,
		`SELECT video_id, watched_at FROM history ORDER BY watched_at DESC`)
	if queryErr != nil {
		err = queryErr
		return nil, queryErr
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var watchedAt int64
		if err = rows.Scan(&e.VideoID, &watchedAt); err != nil {
			return nil, err
		}
		e.WatchedAt = time.Unix(watchedAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearHistory removes all history entries. View counts are untouched.
func (s *Store) ClearHistory(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("clear_history", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `DELETE FROM history`)
	return err
}
