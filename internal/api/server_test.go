package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfieapp/shelfie-server/internal/auth"
	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/http/response"
	"github.com/shelfieapp/shelfie-server/internal/metrics"
	"github.com/shelfieapp/shelfie-server/internal/search"
	"github.com/shelfieapp/shelfie-server/internal/service"
	"github.com/shelfieapp/shelfie-server/internal/sse"
	"github.com/shelfieapp/shelfie-server/internal/store/sqlite"
	"github.com/shelfieapp/shelfie-server/internal/validation"
)

// testEnvelope mirrors the response envelope with typed data.
type testEnvelope[T any] struct {
	Version int                 `json:"v"`
	Success bool                `json:"success"`
	Data    T                   `json:"data"`
	Error   *response.ErrorBody `json:"error"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api    humatest.TestAPI
	tokens *auth.TokenService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithOptions(t, Options{RateLimitRPS: 1000, RateLimitBurst: 1000})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, _, err := search.Open(search.Options{DataPath: filepath.Join(dir, "search"), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	m := metrics.New()
	sseManager := sse.NewManager(logger)
	v := validation.New()

	notifications := service.NewNotificationService(st, sseManager, m, logger)
	services := &Services{
		User:         service.NewUserService(st, idx, v, logger),
		Social:       service.NewSocialGraphService(st, m, logger),
		Book:         service.NewBookService(st, v, logger),
		Feed:         service.NewFeedService(st, logger),
		Engagement:   service.NewEngagementService(st, notifications, v, m, logger),
		Notification: notifications,
	}

	s := NewServer(st, services, tokens, sseManager, idx, m, opts, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		tokens: tokens,
	}
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

// signIn creates (or finds) a user through the sessions endpoint and
// returns the token and user.
func (ts *testServer) signIn(t *testing.T, googleID, given, family string) (string, SessionResponse) {
	t.Helper()

	resp := ts.api.Post("/api/v1/sessions", map[string]any{
		"googleId":    googleID,
		"email":       googleID + "@example.com",
		"given_name":  given,
		"family_name": family,
	})
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.Code, resp.Body.String())

	env := decodeEnvelope[SessionResponse](t, resp.Body.Bytes())
	require.True(t, env.Success)
	return env.Data.Token, env.Data
}

func (ts *testServer) guestToken(t *testing.T) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/sessions/guest")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decodeEnvelope[GuestSessionResponse](t, resp.Body.Bytes()).Data.Token
}

func (ts *testServer) createBook(t *testing.T, token, googleBooksID, title string) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"googleBooksId": googleBooksID,
		"title":         title,
		"authors":       []string{"Ursula K. Le Guin"},
		"category":      "Read",
		"rating":        5,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeEnvelope[bookBody](t, resp.Body.Bytes()).Data.ID
}

// bookBody is the subset of a book the tests inspect.
type bookBody struct {
	ID       string   `json:"id"`
	UserID   string   `json:"userId"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Rating   int      `json:"rating"`
	Review   string   `json:"review"`
	Likes    []string `json:"likes"`
}

func TestSessions_SignInCreatesThenFinds(t *testing.T) {
	ts := setupTestServer(t)

	body := map[string]any{"googleId": "g-1", "given_name": "Zoë", "family_name": "Ødegård"}

	resp := ts.api.Post("/api/v1/sessions", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decodeEnvelope[SessionResponse](t, resp.Body.Bytes())
	assert.Equal(t, response.EnvelopeVersion, created.Version)
	assert.True(t, created.Data.Created)
	assert.Equal(t, "zoeodegard", created.Data.User.Username)
	assert.NotEmpty(t, created.Data.Token)

	resp = ts.api.Post("/api/v1/sessions", body)
	require.Equal(t, http.StatusOK, resp.Code)
	again := decodeEnvelope[SessionResponse](t, resp.Body.Bytes())
	assert.False(t, again.Data.Created)
	assert.Equal(t, created.Data.User.ID, again.Data.User.ID)

	claims, err := ts.tokens.Verify(again.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, created.Data.User.ID, claims.UserID)
}

func TestSessions_MissingGoogleIDIsValidationError(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/sessions", map[string]any{"given_name": "Nobody"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)
}

func TestAuth_MissingAndInvalidToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	resp = ts.api.Get("/api/v1/users/me", bearer("v4.local.garbage"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGuest_ReadOnly(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.signIn(t, "g-alice", "Alice", "Liddell")
	ts.createBook(t, aliceToken, "vol-1", "The Dispossessed")

	guest := ts.guestToken(t)

	resp := ts.api.Get("/api/v1/feed", bearer(guest))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	feed := decodeEnvelope[FeedResponse](t, resp.Body.Bytes())
	require.Len(t, feed.Data.Posts, 1, "guests follow everyone")
	require.NotNil(t, feed.Data.Posts[0].User)
	assert.Equal(t, "aliceliddell", feed.Data.Posts[0].User.Username)

	resp = ts.api.Post("/api/v1/books", bearer(guest), map[string]any{
		"googleBooksId": "vol-2", "title": "Lathe of Heaven", "category": "Read",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	resp = ts.api.Post("/api/v1/users/aliceliddell/follow", bearer(guest))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestUsers_UpdateProfile(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.signIn(t, "g-alice", "Alice", "Liddell")
	_, bob := ts.signIn(t, "g-bob", "Bob", "Builder")

	resp := ts.api.Patch("/api/v1/users/me", bearer(aliceToken), map[string]any{
		"username": "alice",
		"bio":      "<p>Reads <strong>everything</strong></p>",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeEnvelope[*domain.User](t, resp.Body.Bytes()).Data
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "Reads **everything**", updated.Bio)

	t.Run("taken handle", func(t *testing.T) {
		resp := ts.api.Patch("/api/v1/users/me", bearer(aliceToken), map[string]any{"username": bob.User.Username})
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("invalid handle", func(t *testing.T) {
		resp := ts.api.Patch("/api/v1/users/me", bearer(aliceToken), map[string]any{"username": "not valid!"})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("lookup by handle", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/users/by-username/alice", bearer(aliceToken))
		assert.Equal(t, http.StatusOK, resp.Code)

		resp = ts.api.Get("/api/v1/users/by-username/nobody", bearer(aliceToken))
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("lookup by google id", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/users/by-google/g-bob", bearer(aliceToken))
		assert.Equal(t, http.StatusOK, resp.Code)
	})
}

func TestUsers_Search(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.signIn(t, "g-alice", "Alice", "Liddell")
	ts.signIn(t, "g-bob", "Bob", "Builder")

	resp := ts.api.Get("/api/v1/users/search?q=alice", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[SearchUsersResponse](t, resp.Body.Bytes())
	require.NotEmpty(t, env.Data.Users)
	assert.Equal(t, "aliceliddell", env.Data.Users[0].Username)
}

func TestSocial_FollowBecomesFriends(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, alice := ts.signIn(t, "g-alice", "Alice", "Liddell")
	bobToken, bob := ts.signIn(t, "g-bob", "Bob", "Builder")

	resp := ts.api.Post("/api/v1/users/"+bob.User.Username+"/follow", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	first := decodeEnvelope[service.FollowResult](t, resp.Body.Bytes())
	assert.False(t, first.Data.IsFriend)
	assert.Equal(t, 1, first.Data.User.NumFollowing)

	resp = ts.api.Post("/api/v1/users/"+alice.User.Username+"/follow", bearer(bobToken))
	require.Equal(t, http.StatusOK, resp.Code)
	second := decodeEnvelope[service.FollowResult](t, resp.Body.Bytes())
	assert.True(t, second.Data.IsFriend)
	assert.Equal(t, 1, second.Data.User.NumFriends)

	resp = ts.api.Post("/api/v1/users/"+bob.User.Username+"/follow", bearer(aliceToken))
	assert.Equal(t, http.StatusConflict, resp.Code, "already following")

	resp = ts.api.Post("/api/v1/users/"+alice.User.Username+"/follow", bearer(aliceToken))
	assert.Equal(t, http.StatusBadRequest, resp.Code, "self follow")

	resp = ts.api.Delete("/api/v1/users/"+bob.User.Username+"/follow", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", bearer(bobToken))
	require.Equal(t, http.StatusOK, resp.Code)
	me := decodeEnvelope[*domain.User](t, resp.Body.Bytes()).Data
	assert.Equal(t, 0, me.NumFriends)
	assert.Empty(t, me.Followers)
}

func TestFeed_FollowedUsersOnly(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.signIn(t, "g-alice", "Alice", "Liddell")
	bobToken, bob := ts.signIn(t, "g-bob", "Bob", "Builder")
	carolToken, _ := ts.signIn(t, "g-carol", "Carol", "Danvers")

	ts.createBook(t, bobToken, "vol-b", "Bob's Book")
	ts.createBook(t, carolToken, "vol-c", "Carol's Book")
	ts.createBook(t, aliceToken, "vol-a", "Alice's Book")

	resp := ts.api.Post("/api/v1/users/"+bob.User.Username+"/follow", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/feed", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)
	feed := decodeEnvelope[FeedResponse](t, resp.Body.Bytes())

	titles := make([]string, 0, len(feed.Data.Posts))
	for _, p := range feed.Data.Posts {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"Alice's Book", "Bob's Book"}, titles)
}

func TestBooks_CRUD(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, alice := ts.signIn(t, "g-alice", "Alice", "Liddell")
	bobToken, _ := ts.signIn(t, "g-bob", "Bob", "Builder")

	bookID := ts.createBook(t, aliceToken, "vol-1", "The Dispossessed")

	t.Run("duplicate is conflict", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/books", bearer(aliceToken), map[string]any{
			"googleBooksId": "vol-1", "title": "Other title", "category": "To Be Read",
		})
		assert.Equal(t, http.StatusConflict, resp.Code)

		resp = ts.api.Get("/api/v1/books/"+bookID, bearer(aliceToken))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "The Dispossessed", decodeEnvelope[bookBody](t, resp.Body.Bytes()).Data.Title)
	})

	t.Run("invalid category", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/books", bearer(aliceToken), map[string]any{
			"googleBooksId": "vol-9", "title": "X", "category": "Abandoned",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("list by category", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/users/"+alice.User.ID+"/books?category=Read", bearer(bobToken))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Len(t, decodeEnvelope[BooksResponse](t, resp.Body.Bytes()).Data.Books, 1)

		resp = ts.api.Get("/api/v1/users/"+alice.User.ID+"/books?category=To%20Be%20Read", bearer(bobToken))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, decodeEnvelope[BooksResponse](t, resp.Body.Bytes()).Data.Books)
	})

	t.Run("only owner updates", func(t *testing.T) {
		resp := ts.api.Patch("/api/v1/books/"+bookID, bearer(bobToken), map[string]any{"rating": 1})
		assert.Equal(t, http.StatusForbidden, resp.Code)

		resp = ts.api.Patch("/api/v1/books/"+bookID, bearer(aliceToken), map[string]any{
			"category": "Currently Reading",
			"review":   "Rereading",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		book := decodeEnvelope[bookBody](t, resp.Body.Bytes()).Data
		assert.Equal(t, "Currently Reading", book.Category)
		assert.Equal(t, "Rereading", book.Review)
		assert.Equal(t, 5, book.Rating)
	})

	t.Run("only owner deletes", func(t *testing.T) {
		resp := ts.api.Delete("/api/v1/books/"+bookID, bearer(bobToken))
		assert.Equal(t, http.StatusForbidden, resp.Code)

		resp = ts.api.Delete("/api/v1/books/"+bookID, bearer(aliceToken))
		require.Equal(t, http.StatusOK, resp.Code)

		resp = ts.api.Get("/api/v1/books/"+bookID, bearer(aliceToken))
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestEngagement_LikeCommentNotify(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.signIn(t, "g-alice", "Alice", "Liddell")
	bobToken, bob := ts.signIn(t, "g-bob", "Bob", "Builder")

	bookID := ts.createBook(t, aliceToken, "vol-1", "The Dispossessed")

	resp := ts.api.Post("/api/v1/books/"+bookID+"/like", bearer(bobToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []string{bob.User.ID}, decodeEnvelope[LikesResponse](t, resp.Body.Bytes()).Data.Likes)

	resp = ts.api.Get("/api/v1/notifications/unread-count", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, decodeEnvelope[UnreadCountResponse](t, resp.Body.Bytes()).Data.Count)

	resp = ts.api.Post("/api/v1/books/"+bookID+"/like", bearer(bobToken))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeEnvelope[LikesResponse](t, resp.Body.Bytes()).Data.Likes)

	resp = ts.api.Get("/api/v1/notifications", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeEnvelope[NotificationsResponse](t, resp.Body.Bytes()).Data.Notifications, "unlike retracts")

	resp = ts.api.Post("/api/v1/books/"+bookID+"/comments", bearer(bobToken), map[string]any{"text": "Great pick"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	comments := decodeEnvelope[CommentsResponse](t, resp.Body.Bytes()).Data.Comments
	require.Len(t, comments, 1)
	assert.Equal(t, bob.User.Username, comments[0].Username)

	resp = ts.api.Post("/api/v1/books/"+bookID+"/comments/"+comments[0].ID+"/replies", bearer(aliceToken), map[string]any{"text": "Thanks!"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	comments = decodeEnvelope[CommentsResponse](t, resp.Body.Bytes()).Data.Comments
	require.Len(t, comments[0].Replies, 1)

	resp = ts.api.Get("/api/v1/notifications", bearer(bobToken))
	require.Equal(t, http.StatusOK, resp.Code)
	bobNotifications := decodeEnvelope[NotificationsResponse](t, resp.Body.Bytes()).Data.Notifications
	require.Len(t, bobNotifications, 1)
	assert.Equal(t, "reply", string(bobNotifications[0].Type))

	resp = ts.api.Post("/api/v1/books/"+bookID+"/comments", bearer(bobToken), map[string]any{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Delete("/api/v1/books/"+bookID+"/comments/"+comments[0].ID, bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code, "owner may delete any comment")
	assert.Empty(t, decodeEnvelope[CommentsResponse](t, resp.Body.Bytes()).Data.Comments)
}

func TestNotifications_ReadAndDelete(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.signIn(t, "g-alice", "Alice", "Liddell")
	bobToken, _ := ts.signIn(t, "g-bob", "Bob", "Builder")

	first := ts.createBook(t, aliceToken, "vol-1", "One")
	second := ts.createBook(t, aliceToken, "vol-2", "Two")
	for _, id := range []string{first, second} {
		resp := ts.api.Post("/api/v1/books/"+id+"/like", bearer(bobToken))
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/notifications", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeEnvelope[NotificationsResponse](t, resp.Body.Bytes()).Data.Notifications
	require.Len(t, list, 2)
	assert.Equal(t, "Two", list[0].BookTitle, "newest first")

	resp = ts.api.Post("/api/v1/notifications/"+list[0].ID+"/read", bearer(bobToken))
	assert.Equal(t, http.StatusNotFound, resp.Code, "not the recipient")

	resp = ts.api.Post("/api/v1/notifications/"+list[0].ID+"/read", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/notifications/read-all", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, decodeEnvelope[MarkAllReadResponse](t, resp.Body.Bytes()).Data.Updated)

	resp = ts.api.Delete("/api/v1/notifications/"+list[1].ID, bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/notifications/"+list[1].ID, bearer(aliceToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRateLimit_Engagement(t *testing.T) {
	ts := setupTestServerWithOptions(t, Options{RateLimitRPS: 0.001, RateLimitBurst: 2})

	// Sign in consumes the per-IP bucket; engagement uses the per-user bucket.
	aliceToken, _ := ts.signIn(t, "g-alice", "Alice", "Liddell")
	bookID := ts.createBook(t, aliceToken, "vol-1", "One")

	resp := ts.api.Post("/api/v1/books/"+bookID+"/like", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)
	resp = ts.api.Post("/api/v1/books/"+bookID+"/like", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/books/"+bookID+"/like", bearer(aliceToken))
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "healthy", env.Data.Components["search"].Status)
	assert.Equal(t, "no connected clients", env.Data.Components["sse"].Message)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.signIn(t, "g-alice", "Alice", "Liddell")
	_, bob := ts.signIn(t, "g-bob", "Bob", "Builder")
	resp := ts.api.Post("/api/v1/users/"+bob.User.Username+"/follow", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "shelfie_follows_total 1")
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
}

func TestStreamIdentity(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.signIn(t, "g-alice", "Alice", "Liddell")
	claims, err := ts.tokens.Verify(token)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/api/v1/events?token="+token, nil)
	require.NoError(t, err)
	userID, err := ts.streamIdentity(req)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, userID)

	req.URL.RawQuery = ""
	_, err = ts.streamIdentity(req)
	assert.Error(t, err)
}
