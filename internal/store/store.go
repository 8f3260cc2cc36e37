// Package store defines the persistence contract for Shelfie.
//
// A Store holds three document collections: users, books and notifications.
// Each write touches exactly one document; nothing in this interface spans
// documents atomically. Services compose multi-document operations as
// ordered steps and own the partial-failure policy.
//
// Two drivers implement Store: store/sqlite (default) and store/badgerdb.
// Both pass the suite in store/storetest.
package store

import (
	"context"

	"github.com/shelfieapp/shelfie-server/internal/domain"
)

// Store is the document store used by the services.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	// Users.
	// CreateUser returns ErrAlreadyExists when the ID, Google ID or username is taken.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// UpdateUser replaces the whole document (last writer wins).
	// It returns ErrAlreadyExists when a changed username collides.
	UpdateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ListUsernames(ctx context.Context) ([]string, error)

	// Books.
	// CreateBook returns ErrAlreadyExists when (UserID, GoogleBooksID) exists.
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	// DeleteBook is idempotent.
	DeleteBook(ctx context.Context, id string) error
	// ListBooksByOwner returns newest-created first. An empty category lists all.
	ListBooksByOwner(ctx context.Context, ownerID string, category domain.Category) ([]*domain.Book, error)
	// ListRecentBooksByOwners returns at most limit books owned by any of
	// ownerIDs, most recently updated first.
	ListRecentBooksByOwners(ctx context.Context, ownerIDs []string, limit int) ([]*domain.Book, error)

	// Notifications.
	// CreateNotification returns ErrAlreadyExists when the ID is taken, or for
	// a like when one already exists for the same recipient, sender and book.
	CreateNotification(ctx context.Context, n *domain.Notification) error
	GetNotification(ctx context.Context, id string) (*domain.Notification, error)
	UpdateNotification(ctx context.Context, n *domain.Notification) error
	// DeleteNotification is idempotent.
	DeleteNotification(ctx context.Context, id string) error
	// DeleteNotificationsMatching deletes every notification satisfying m and
	// returns the deleted documents.
	DeleteNotificationsMatching(ctx context.Context, m domain.NotificationMatch) ([]*domain.Notification, error)
	// ListNotifications returns at most limit notifications, newest first.
	// A limit <= 0 returns all of them.
	ListNotifications(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error)
	CountUnreadNotifications(ctx context.Context, recipientID string) (int, error)
	// MarkAllNotificationsRead returns how many notifications changed.
	MarkAllNotificationsRead(ctx context.Context, recipientID string) (int, error)
}
