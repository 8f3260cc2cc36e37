// Package badgerdb implements store.Store on the Badger key-value store,
// using generic entities with secondary indexes.
package badgerdb

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

const (
	userPrefix         = "user:"
	bookPrefix         = "book:"
	notificationPrefix = "notif:"
)

// Index names.
const (
	idxGoogleID         = "google"
	idxUsername         = "username"
	idxOwnerCatalog     = "owner_catalog"
	idxOwnerCreated     = "owner_created"
	idxOwnerCategory    = "owner_category"
	idxOwnerUpdated     = "owner_updated"
	idxRecipientCreated = "recipient_created"
	idxMatch            = "match"
	idxLikeOnce         = "like_once"
)

// Store wraps a Badger database.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	users         *Entity[domain.User]
	books         *Entity[domain.Book]
	notifications *Entity[domain.Notification]
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a Badger database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{db: db, logger: logger}
	s.initEntities()

	logger.Info("badger database opened", "path", dir)
	return s, nil
}

func (s *Store) initEntities() {
	s.users = NewEntity[domain.User](s.db, userPrefix).
		WithNotFound(store.ErrUserNotFound).
		WithIndex(idxGoogleID, func(u *domain.User) []string { return []string{u.GoogleID} }).
		WithIndex(idxUsername, func(u *domain.User) []string { return []string{u.Username} })

	s.books = NewEntity[domain.Book](s.db, bookPrefix).
		WithNotFound(store.ErrBookNotFound).
		WithIndex(idxOwnerCatalog, func(b *domain.Book) []string {
			return []string{b.UserID + "|" + b.GoogleBooksID}
		}).
		WithIndex(idxOwnerCreated, func(b *domain.Book) []string {
			return []string{b.UserID + ":" + invertedTimestamp(b.CreatedAt) + ":" + b.ID}
		}).
		WithIndex(idxOwnerCategory, func(b *domain.Book) []string {
			return []string{b.UserID + ":" + string(b.Category) + ":" + invertedTimestamp(b.CreatedAt) + ":" + b.ID}
		}).
		WithIndex(idxOwnerUpdated, func(b *domain.Book) []string {
			return []string{b.UserID + ":" + invertedTimestamp(b.UpdatedAt) + ":" + b.ID}
		})

	s.notifications = NewEntity[domain.Notification](s.db, notificationPrefix).
		WithNotFound(store.ErrNotificationNotFound).
		WithIndex(idxRecipientCreated, func(n *domain.Notification) []string {
			return []string{n.RecipientID + ":" + invertedTimestamp(n.CreatedAt) + ":" + n.ID}
		}).
		WithIndex(idxMatch, func(n *domain.Notification) []string {
			return []string{matchPrefix(domain.NotificationMatch{
				RecipientID: n.RecipientID,
				SenderID:    n.SenderID,
				Type:        n.Type,
				BookID:      n.BookID,
			}) + n.ID}
		}).
		WithIndex(idxLikeOnce, func(n *domain.Notification) []string {
			if n.Type != domain.NotificationLike {
				return nil
			}
			return []string{n.RecipientID + "|" + n.SenderID + "|" + n.BookID}
		})
}

// Close closes the database.
func (s *Store) Close() error {
	s.logger.Info("closing badger database")
	return s.db.Close()
}

// Ping checks that the database still accepts reads.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("badger database is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// invertedTimestamp sorts newest first under forward iteration.
func invertedTimestamp(t time.Time) string {
	return fmt.Sprintf("%019d", math.MaxInt64-t.UnixNano())
}

func matchPrefix(m domain.NotificationMatch) string {
	return m.RecipientID + "|" + m.SenderID + "|" + string(m.Type) + "|" + m.BookID + "|"
}
