package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"
)

// Setting keys used by the application.
const (
	SettingHideHiddenFiles = "hideHiddenFiles"
)

// GetSetting retrieves a setting value. The empty string is returned for
// keys that were never set.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting stores a setting key/value pair. A new value takes effect on
// the next scan or query that reads it.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_setting", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// AllSettings returns every persisted setting as a map.
func (s *Store) AllSettings(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// HideHiddenFiles reports the hideHiddenFiles setting, defaulting to true
// when unset.
func (s *Store) HideHiddenFiles(ctx context.Context) bool {
	value, err := s.GetSetting(ctx, SettingHideHiddenFiles)
	if err != nil || value == "" {
		return true
	}
	hidden, err := strconv.ParseBool(value)
	if err != nil {
		return true
	}
	return hidden
}
