package badgerdb

import (
	"context"
	"errors"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

// CreateUser stores a new user.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := s.users.Create(ctx, user.ID, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return store.ErrAlreadyExists.WithMessage("user already exists").WithCause(err)
		}
		return err
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.Get(ctx, id)
}

// GetUserByGoogleID retrieves a user by external auth identifier.
func (s *Store) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return s.users.GetByIndex(ctx, idxGoogleID, googleID)
}

// GetUserByUsername retrieves a user by handle.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByIndex(ctx, idxUsername, username)
}

// UpdateUser replaces an existing user document.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := s.users.Update(ctx, user.ID, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return store.ErrAlreadyExists.WithMessage("username already taken").WithCause(err)
		}
		return err
	}
	return nil
}

// ListUsers returns every user.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for u, err := range s.users.List(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// ListUsernames returns every registered handle.
func (s *Store) ListUsernames(ctx context.Context) ([]string, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out, nil
}
