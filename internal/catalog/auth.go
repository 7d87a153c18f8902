package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionDuration is the length of time a session remains valid.
const SessionDuration = 7 * 24 * time.Hour

// Session represents an authenticated admin session.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasUser reports whether the single admin account has been created.
func (s *Store) HasUser(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false
	}
	return count > 0
}

// CreateUser creates the single admin account with the given password.
func (s *Store) CreateUser(ctx context.Context, password string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_user", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (password_hash) VALUES (?)`, string(hash))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdatePassword replaces the admin password and invalidates all sessions.
func (s *Store) UpdatePassword(ctx context.Context, password string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_password", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = strftime('%s', 'now')
	`, string(hash))
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}

	if _, err = s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		logger.Warn("failed to clear sessions after password change: %v", err)
	}
	return nil
}

// ValidatePassword checks the admin password.
func (s *Store) ValidatePassword(ctx context.Context, password string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("validate_password", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var hash string
	err = s.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users LIMIT 1`).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// CreateSession creates a new session token for the admin account.
func (s *Store) CreateSession(ctx context.Context) (*Session, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_session", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var userID int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM users LIMIT 1`).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	session := &Session{
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(SessionDuration),
		CreatedAt: time.Now(),
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, token, expires_at) VALUES (?, ?, ?)
	`, session.UserID, session.Token, session.ExpiresAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.ID, _ = result.LastInsertId()
	return session, nil
}

// ValidateSession reports whether a token belongs to an unexpired session.
func (s *Store) ValidateSession(ctx context.Context, token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sessions WHERE token = ? AND expires_at > strftime('%s', 'now')
	`, token).Scan(&count)
	return err == nil && count > 0
}

// DeleteSession removes a session by token.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// CleanExpiredSessions removes sessions past their expiry.
func (s *Store) CleanExpiredSessions(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= strftime('%s', 'now')`)
	if err != nil {
		logger.Warn("failed to clean expired sessions: %v", err)
		return
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		logger.Debug("Cleaned %d expired sessions", rows)
	}
}
