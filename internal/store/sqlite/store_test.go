package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfieapp/shelfie-server/internal/store"
	"github.com/shelfieapp/shelfie-server/internal/store/storetest"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestOpen_ReappliesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(t.Context(), storetest.User("user-1", "g-1", "reader")))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	u, err := s.GetUser(t.Context(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "reader", u.Username)
}

func TestFormatTime_SortsAsText(t *testing.T) {
	a := time.Date(2025, 1, 1, 9, 59, 59, 999_999_999, time.UTC)
	b := a.Add(time.Nanosecond)
	require.Less(t, formatTime(a), formatTime(b))
}
