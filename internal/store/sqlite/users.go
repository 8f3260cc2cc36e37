package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists if the ID, Google ID or username is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	doc, err := encodeDoc(user)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, google_id, username, created_at, updated_at, doc)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.GoogleID,
		user.Username,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		doc,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("user already exists")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM users WHERE id = ?`, id)
	return scanDoc[domain.User](row, store.ErrUserNotFound)
}

// GetUserByGoogleID retrieves a user by external auth identifier.
func (s *Store) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM users WHERE google_id = ?`, googleID)
	return scanDoc[domain.User](row, store.ErrUserNotFound)
}

// GetUserByUsername retrieves a user by handle. Handles are case sensitive.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM users WHERE username = ?`, username)
	return scanDoc[domain.User](row, store.ErrUserNotFound)
}

// UpdateUser replaces an existing user document.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	doc, err := encodeDoc(user)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET google_id = ?, username = ?, updated_at = ?, doc = ?
		WHERE id = ?`,
		user.GoogleID,
		user.Username,
		formatTime(user.UpdatedAt),
		doc,
		user.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("username already taken")
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res, store.ErrUserNotFound)
}

// ListUsers returns every user ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return queryDocs[domain.User](ctx, s.db, `SELECT doc FROM users ORDER BY created_at`)
}

// ListUsernames returns every registered handle.
func (s *Store) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
