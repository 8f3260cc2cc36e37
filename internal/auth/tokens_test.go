package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *TokenService {
	t.Helper()
	key, err := LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	svc, err := NewTokenService(key, time.Hour)
	require.NoError(t, err)
	return svc
}

func TestTokenService_UserRoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.IssueUser("user-123")
	require.NoError(t, err)
	assert.Contains(t, token, "v4.local.")

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.False(t, claims.Guest)
	assert.Equal(t, Identity{UserID: "user-123"}, claims.Identity())
	assert.NotEmpty(t, claims.TokenID)
}

func TestTokenService_Guest(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.IssueGuest()
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.Guest)
	assert.Empty(t, claims.UserID)
}

func TestTokenService_Expired(t *testing.T) {
	svc := newTestService(t)

	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.IssueUser("user-123")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_WrongKey(t *testing.T) {
	token, err := newTestService(t).IssueUser("user-123")
	require.NoError(t, err)

	_, err = newTestService(t).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = newTestService(t).Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_RejectsBadInput(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(make([]byte, keyBytesSize), 0)
	assert.Error(t, err)
}

func TestUserRequired(t *testing.T) {
	_, err := newTestService(t).IssueUser("")
	assert.Error(t, err)
}

func TestLoadOrGenerateKey_Persists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyBytesSize)

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, err := os.Stat(filepath.Join(dir, keyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrGenerateKey_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, keyFileName), []byte("zz"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}
