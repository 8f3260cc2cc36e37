// Package service holds the Shelfie business logic: profiles, the social
// graph, libraries, the feed, engagement and notifications.
//
// Services depend on store.Store and return *errors.Error values. Store
// sentinels never cross this boundary.
package service

import (
	"errors"

	domainerrors "github.com/shelfieapp/shelfie-server/internal/errors"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

// User-facing messages shared across services.
const (
	msgUserNotFound         = "User not found"
	msgBookNotFound         = "Book not found"
	msgCommentNotFound      = "Comment not found"
	msgNotificationNotFound = "Notification not found"
	msgUsernameTaken        = "Username already taken"
	msgBookExists           = "Book already exists in your library"
)

// translate maps store sentinels onto domain errors. notFound is the message
// used when err is store.ErrNotFound; anything unrecognised becomes INTERNAL
// with op as its message.
func translate(err error, op, notFound string) error {
	if err == nil {
		return nil
	}

	var derr *domainerrors.Error
	if errors.As(err, &derr) {
		return err
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(notFound).WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.Conflict(err.Error()).WithCause(err)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation(err.Error()).WithCause(err)
	default:
		return domainerrors.Wrap(err, domainerrors.CodeInternal, op)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
