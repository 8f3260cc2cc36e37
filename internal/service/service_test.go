package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/search"
	"github.com/shelfieapp/shelfie-server/internal/sse"
	"github.com/shelfieapp/shelfie-server/internal/store"
	"github.com/shelfieapp/shelfie-server/internal/store/sqlite"
	"github.com/shelfieapp/shelfie-server/internal/store/storetest"
	"github.com/shelfieapp/shelfie-server/internal/validation"
)

type testEnv struct {
	store  store.Store
	events *recordingEmitter

	users         *UserService
	social        *SocialGraphService
	books         *BookService
	feed          *FeedService
	engagement    *EngagementService
	notifications *NotificationService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return setupTestEnvWithStore(t, newTestStore(t))
}

func setupTestEnvWithStore(t *testing.T, s store.Store) *testEnv {
	t.Helper()

	logger := testLogger()
	v := validation.New()
	events := &recordingEmitter{}

	idx, _, err := search.Open(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	notifications := NewNotificationService(s, events, nil, logger)
	return &testEnv{
		store:         s,
		events:        events,
		users:         NewUserService(s, idx, v, logger),
		social:        NewSocialGraphService(s, nil, logger),
		books:         NewBookService(s, v, logger),
		feed:          NewFeedService(s, logger),
		engagement:    NewEngagementService(s, notifications, v, nil, logger),
		notifications: notifications,
	}
}

// createTestUser stores a user directly, bypassing sign-in.
func createTestUser(t *testing.T, s store.Store, id, username string) *domain.User {
	t.Helper()
	u := storetest.User(id, "google-"+id, username)
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// createTestBook stores a book created and updated at a fixed base time plus
// offset.
func createTestBook(t *testing.T, s store.Store, id, ownerID, googleBooksID string, offset time.Duration) *domain.Book {
	t.Helper()
	b := storetest.Book(id, ownerID, googleBooksID, domain.CategoryRead, offset)
	require.NoError(t, s.CreateBook(context.Background(), b))
	return b
}

func mustGetUser(t *testing.T, s store.Store, id string) *domain.User {
	t.Helper()
	u, err := s.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

// recordingEmitter captures emitted SSE events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) ofType(t sse.EventType) []sse.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sse.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

var errInjected = errors.New("injected failure")

// flakyStore fails selected writes.
type flakyStore struct {
	store.Store

	mu                sync.Mutex
	failUserUpdates   map[string]int // user ID -> remaining failures
	failNotifications bool
	failUserLookups   map[string]bool
}

func newFlakyStore(inner store.Store) *flakyStore {
	return &flakyStore{
		Store:           inner,
		failUserUpdates: map[string]int{},
		failUserLookups: map[string]bool{},
	}
}

func (f *flakyStore) failNextUpdate(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUserUpdates[userID]++
}

func (f *flakyStore) UpdateUser(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	if f.failUserUpdates[u.ID] > 0 {
		f.failUserUpdates[u.ID]--
		f.mu.Unlock()
		return errInjected
	}
	f.mu.Unlock()
	return f.Store.UpdateUser(ctx, u)
}

func (f *flakyStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	fail := f.failUserLookups[id]
	f.mu.Unlock()
	if fail {
		return nil, errInjected
	}
	return f.Store.GetUser(ctx, id)
}

func (f *flakyStore) CreateNotification(ctx context.Context, n *domain.Notification) error {
	f.mu.Lock()
	fail := f.failNotifications
	f.mu.Unlock()
	if fail {
		return errInjected
	}
	return f.Store.CreateNotification(ctx, n)
}
