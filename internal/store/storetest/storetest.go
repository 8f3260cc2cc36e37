// Package storetest holds the behavioural suite every store.Store driver must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

// Factory returns a fresh, empty store. The factory registers its own cleanup.
type Factory func(t *testing.T) store.Store

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("UserUniqueness", func(t *testing.T) { testUserUniqueness(t, newStore(t)) })
	t.Run("Books", func(t *testing.T) { testBooks(t, newStore(t)) })
	t.Run("BookOrdering", func(t *testing.T) { testBookOrdering(t, newStore(t)) })
	t.Run("RecentBooksByOwners", func(t *testing.T) { testRecentBooks(t, newStore(t)) })
	t.Run("Notifications", func(t *testing.T) { testNotifications(t, newStore(t)) })
	t.Run("DeleteNotificationsMatching", func(t *testing.T) { testDeleteMatching(t, newStore(t)) })
	t.Run("LikeNotificationUniqueness", func(t *testing.T) { testLikeUniqueness(t, newStore(t)) })
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// User builds a user with deterministic timestamps.
func User(id, googleID, username string) *domain.User {
	return &domain.User{
		Document:  domain.Document{ID: id, CreatedAt: base, UpdatedAt: base},
		GoogleID:  googleID,
		Email:     username + "@example.com",
		Username:  username,
		Bio:       domain.DefaultBio,
		Following: []string{},
		Followers: []string{},
	}
}

// Book builds a book created and updated at base+offset.
func Book(id, ownerID, googleBooksID string, category domain.Category, offset time.Duration) *domain.Book {
	at := base.Add(offset)
	return &domain.Book{
		Document:      domain.Document{ID: id, CreatedAt: at, UpdatedAt: at},
		UserID:        ownerID,
		GoogleBooksID: googleBooksID,
		Title:         "Title " + googleBooksID,
		Authors:       []string{"Author"},
		Categories:    []string{},
		Category:      category,
		Likes:         []string{},
		Comments:      []domain.Comment{},
	}
}

func notification(id, recipient, sender string, typ domain.NotificationType, bookID string, offset time.Duration) *domain.Notification {
	at := base.Add(offset)
	return &domain.Notification{
		Document:       domain.Document{ID: id, CreatedAt: at, UpdatedAt: at},
		RecipientID:    recipient,
		SenderID:       sender,
		SenderUsername: "sender",
		Type:           typ,
		BookID:         bookID,
		BookTitle:      "Title",
	}
}

func bookIDs(books []*domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func notificationIDs(ns []*domain.Notification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	alice := User("user-alice", "g-alice", "alice")
	alice.Following = []string{"bob"}
	require.NoError(t, s.CreateUser(ctx, alice))

	got, err := s.GetUser(ctx, "user-alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, []string{"bob"}, got.Following)
	assert.True(t, got.CreatedAt.Equal(base))

	got, err = s.GetUserByGoogleID(ctx, "g-alice")
	require.NoError(t, err)
	assert.Equal(t, "user-alice", got.ID)

	got, err = s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-alice", got.ID)

	_, err = s.GetUser(ctx, "user-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetUserByGoogleID(ctx, "g-nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	got.Username = "alicia"
	got.Bio = "reads a lot"
	require.NoError(t, s.UpdateUser(ctx, got))

	_, err = s.GetUserByUsername(ctx, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound, "old handle must be released")
	renamed, err := s.GetUserByUsername(ctx, "alicia")
	require.NoError(t, err)
	assert.Equal(t, "reads a lot", renamed.Bio)

	require.NoError(t, s.CreateUser(ctx, User("user-bob", "g-bob", "bob")))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	names, err := s.ListUsernames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alicia", "bob"}, names)

	err = s.UpdateUser(ctx, User("user-ghost", "g-ghost", "ghost"))
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Ping(ctx))
}

func testUserUniqueness(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, User("user-1", "g-1", "reader")))

	err := s.CreateUser(ctx, User("user-2", "g-2", "reader"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists, "duplicate username")

	err = s.CreateUser(ctx, User("user-3", "g-1", "other"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists, "duplicate google id")

	require.NoError(t, s.CreateUser(ctx, User("user-4", "g-4", "reader2")))
	u4, err := s.GetUser(ctx, "user-4")
	require.NoError(t, err)
	u4.Username = "reader"
	assert.ErrorIs(t, s.UpdateUser(ctx, u4), store.ErrAlreadyExists, "rename onto a taken handle")
}

func testBooks(t *testing.T, s store.Store) {
	ctx := context.Background()

	b := Book("book-1", "user-alice", "gb-1", domain.CategoryToBeRead, 0)
	require.NoError(t, s.CreateBook(ctx, b))

	err := s.CreateBook(ctx, Book("book-2", "user-alice", "gb-1", domain.CategoryRead, time.Minute))
	assert.ErrorIs(t, err, store.ErrAlreadyExists, "same catalog title twice for one owner")

	require.NoError(t, s.CreateBook(ctx, Book("book-3", "user-bob", "gb-1", domain.CategoryRead, time.Minute)),
		"another owner may shelve the same title")

	got, err := s.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "Title gb-1", got.Title)
	assert.Equal(t, domain.CategoryToBeRead, got.Category)

	got.Likes = append(got.Likes, "user-bob")
	got.Comments = append(got.Comments, domain.Comment{ID: "c-1", UserID: "user-bob", Username: "bob", Text: "nice", Replies: []domain.Reply{}})
	got.Category = domain.CategoryRead
	got.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, s.UpdateBook(ctx, got))

	got, err = s.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-bob"}, got.Likes)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "nice", got.Comments[0].Text)

	read, err := s.ListBooksByOwner(ctx, "user-alice", domain.CategoryRead)
	require.NoError(t, err)
	assert.Equal(t, []string{"book-1"}, bookIDs(read))

	tbr, err := s.ListBooksByOwner(ctx, "user-alice", domain.CategoryToBeRead)
	require.NoError(t, err)
	assert.Empty(t, tbr, "category index follows updates")

	require.NoError(t, s.DeleteBook(ctx, "book-1"))
	require.NoError(t, s.DeleteBook(ctx, "book-1"), "delete is idempotent")

	_, err = s.GetBook(ctx, "book-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.UpdateBook(ctx, got), store.ErrNotFound)

	require.NoError(t, s.CreateBook(ctx, Book("book-4", "user-alice", "gb-1", domain.CategoryRead, 2*time.Minute)),
		"catalog slot is freed by delete")
}

func testBookOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, Book("book-a", "user-1", "gb-a", domain.CategoryRead, 1*time.Minute)))
	require.NoError(t, s.CreateBook(ctx, Book("book-c", "user-1", "gb-c", domain.CategoryToBeRead, 3*time.Minute)))
	require.NoError(t, s.CreateBook(ctx, Book("book-b", "user-1", "gb-b", domain.CategoryRead, 2*time.Minute)))
	require.NoError(t, s.CreateBook(ctx, Book("book-x", "user-10", "gb-x", domain.CategoryRead, 4*time.Minute)))

	all, err := s.ListBooksByOwner(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"book-c", "book-b", "book-a"}, bookIDs(all), "newest created first, no prefix bleed")

	read, err := s.ListBooksByOwner(ctx, "user-1", domain.CategoryRead)
	require.NoError(t, err)
	assert.Equal(t, []string{"book-b", "book-a"}, bookIDs(read))

	none, err := s.ListBooksByOwner(ctx, "user-nobody", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testRecentBooks(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, Book("b1", "u1", "g1", domain.CategoryRead, 1*time.Minute)))
	require.NoError(t, s.CreateBook(ctx, Book("b2", "u2", "g2", domain.CategoryRead, 2*time.Minute)))
	require.NoError(t, s.CreateBook(ctx, Book("b3", "u1", "g3", domain.CategoryRead, 3*time.Minute)))
	require.NoError(t, s.CreateBook(ctx, Book("b4", "u3", "g4", domain.CategoryRead, 4*time.Minute)))

	// An old post becomes the freshest once it is touched.
	b1, err := s.GetBook(ctx, "b1")
	require.NoError(t, err)
	b1.UpdatedAt = base.Add(10 * time.Minute)
	require.NoError(t, s.UpdateBook(ctx, b1))

	got, err := s.ListRecentBooksByOwners(ctx, []string{"u1", "u2"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b3", "b2"}, bookIDs(got))

	got, err = s.ListRecentBooksByOwners(ctx, []string{"u1", "u2", "u3"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b4"}, bookIDs(got))

	got, err = s.ListRecentBooksByOwners(ctx, nil, 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func testNotifications(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateNotification(ctx, notification("n1", "alice", "bob", domain.NotificationLike, "b1", 1*time.Minute)))
	require.NoError(t, s.CreateNotification(ctx, notification("n2", "alice", "carol", domain.NotificationComment, "b1", 2*time.Minute)))
	require.NoError(t, s.CreateNotification(ctx, notification("n3", "alice", "bob", domain.NotificationReply, "b2", 3*time.Minute)))
	require.NoError(t, s.CreateNotification(ctx, notification("n4", "bob", "alice", domain.NotificationLike, "b9", 4*time.Minute)))

	list, err := s.ListNotifications(ctx, "alice", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"n3", "n2", "n1"}, notificationIDs(list))

	list, err = s.ListNotifications(ctx, "alice", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"n3", "n2"}, notificationIDs(list))

	for _, limit := range []int{0, -1} {
		list, err = s.ListNotifications(ctx, "alice", limit)
		require.NoError(t, err)
		assert.Equal(t, []string{"n3", "n2", "n1"}, notificationIDs(list), "limit %d lists everything", limit)
	}

	count, err := s.CountUnreadNotifications(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	n2, err := s.GetNotification(ctx, "n2")
	require.NoError(t, err)
	n2.IsRead = true
	require.NoError(t, s.UpdateNotification(ctx, n2))

	count, err = s.CountUnreadNotifications(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	changed, err := s.MarkAllNotificationsRead(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	count, err = s.CountUnreadNotifications(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = s.CountUnreadNotifications(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "other recipients untouched")

	n1, err := s.GetNotification(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, n1.IsRead)

	require.NoError(t, s.DeleteNotification(ctx, "n1"))
	require.NoError(t, s.DeleteNotification(ctx, "n1"))
	_, err = s.GetNotification(ctx, "n1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testDeleteMatching(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateNotification(ctx, notification("n1", "alice", "bob", domain.NotificationLike, "b1", 1*time.Minute)))
	require.NoError(t, s.CreateNotification(ctx, notification("n2", "alice", "bob", domain.NotificationComment, "b1", 2*time.Minute)))
	require.NoError(t, s.CreateNotification(ctx, notification("n3", "alice", "bob", domain.NotificationLike, "b2", 3*time.Minute)))
	require.NoError(t, s.CreateNotification(ctx, notification("n4", "alice", "carol", domain.NotificationLike, "b1", 4*time.Minute)))

	deleted, err := s.DeleteNotificationsMatching(ctx, domain.NotificationMatch{
		RecipientID: "alice",
		SenderID:    "bob",
		Type:        domain.NotificationLike,
		BookID:      "b1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, notificationIDs(deleted))

	left, err := s.ListNotifications(ctx, "alice", 50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"n2", "n3", "n4"}, notificationIDs(left))

	deleted, err = s.DeleteNotificationsMatching(ctx, domain.NotificationMatch{
		RecipientID: "alice",
		SenderID:    "bob",
		Type:        domain.NotificationLike,
		BookID:      "b1",
	})
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func testLikeUniqueness(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateNotification(ctx, notification("n1", "alice", "bob", domain.NotificationLike, "b1", 1*time.Minute)))

	err := s.CreateNotification(ctx, notification("n2", "alice", "bob", domain.NotificationLike, "b1", 2*time.Minute))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	// Other books, senders and types are unaffected.
	require.NoError(t, s.CreateNotification(ctx, notification("n3", "alice", "bob", domain.NotificationLike, "b2", 3*time.Minute)))
	require.NoError(t, s.CreateNotification(ctx, notification("n4", "alice", "carol", domain.NotificationLike, "b1", 4*time.Minute)))
	require.NoError(t, s.CreateNotification(ctx, notification("n5", "alice", "bob", domain.NotificationComment, "b1", 5*time.Minute)))
	require.NoError(t, s.CreateNotification(ctx, notification("n6", "alice", "bob", domain.NotificationComment, "b1", 6*time.Minute)))

	list, err := s.ListNotifications(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"n6", "n5", "n4", "n3", "n1"}, notificationIDs(list))

	// Once the like is retracted the pair can be notified again.
	_, err = s.DeleteNotificationsMatching(ctx, domain.NotificationMatch{
		RecipientID: "alice",
		SenderID:    "bob",
		Type:        domain.NotificationLike,
		BookID:      "b1",
	})
	require.NoError(t, err)
	require.NoError(t, s.CreateNotification(ctx, notification("n2", "alice", "bob", domain.NotificationLike, "b1", 7*time.Minute)))
}
