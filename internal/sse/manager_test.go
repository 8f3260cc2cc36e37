package sse

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfieapp/shelfie-server/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.EventChan:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.EventChan:
		t.Fatalf("unexpected event %s", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_DeliversToRecipientOnly(t *testing.T) {
	m := NewManager(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	alice, err := m.Connect("user-alice")
	require.NoError(t, err)
	bob, err := m.Connect("user-bob")
	require.NoError(t, err)
	guest, err := m.Connect("")
	require.NoError(t, err)
	assert.Equal(t, 3, m.ClientCount())

	n := &domain.Notification{Document: domain.Document{ID: "notif-1"}, RecipientID: "user-alice", BookID: "book-1"}
	m.Emit(NewNotificationCreatedEvent(n))

	ev := receive(t, alice)
	assert.Equal(t, EventNotificationCreated, ev.Type)
	data, ok := ev.Data.(NotificationEventData)
	require.True(t, ok)
	assert.Equal(t, "notif-1", data.Notification.ID)

	assertNothing(t, bob)
	assertNothing(t, guest)
}

func TestManager_DisconnectAndShutdown(t *testing.T) {
	m := NewManager(testLogger())
	go m.Start(context.Background())

	c, err := m.Connect("user-1")
	require.NoError(t, err)
	m.Disconnect(c.ID)
	m.Disconnect(c.ID)
	assert.Zero(t, m.ClientCount())

	other, err := m.Connect("user-2")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	require.NoError(t, m.Shutdown(ctx), "second shutdown is a no-op")

	_, open := <-other.Done
	assert.False(t, open)

	m.Emit(NewHeartbeatEvent())
}

func TestHandler_StreamsEvents(t *testing.T) {
	m := NewManager(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	h := NewHandler(m, func(*http.Request) (string, error) { return "user-alice", nil }, testLogger())
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	first := readFrame(t, reader)
	assert.Contains(t, first, "event: connected")

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	m.Emit(NewNotificationsReadEvent("user-alice", 3))

	frame := readFrame(t, reader)
	assert.Contains(t, frame, "event: notification.read_all")
	assert.Contains(t, frame, `"updated":3`)
}

func TestHandler_RejectsUnauthenticated(t *testing.T) {
	m := NewManager(testLogger())
	h := NewHandler(m, func(*http.Request) (string, error) { return "", errors.New("no token") }, testLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, m.ClientCount())
}

func readFrame(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var b strings.Builder
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line == "\n" {
			return b.String()
		}
		b.WriteString(line)
	}
}
