package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfieapp/shelfie-server/internal/domain"
)

func setupTestIndex(t *testing.T) *UserIndex {
	t.Helper()

	idx, rebuilt, err := Open(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	assert.True(t, rebuilt)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func user(id, username, given, family string) *domain.User {
	return &domain.User{
		Document:   domain.Document{ID: id},
		Username:   username,
		GivenName:  given,
		FamilyName: family,
		Bio:        domain.DefaultBio,
	}
}

func seed(t *testing.T, idx *UserIndex) {
	t.Helper()
	require.NoError(t, idx.IndexUsers([]*UserDocument{
		NewUserDocument(user("user-1", "janedoe", "Jane", "Doe")),
		NewUserDocument(user("user-2", "janedoe2", "Jane", "Austen")),
		NewUserDocument(user("user-3", "bookworm_bob", "Robert", "Smith")),
	}))
}

func ids(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func TestSearch_ExactHandleFirst(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	hits, err := idx.Search(context.Background(), "janedoe", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "user-1", hits[0].ID)
	assert.Equal(t, "janedoe", hits[0].Username)
	assert.Equal(t, "Jane Doe", hits[0].Name)
	assert.Contains(t, ids(hits), "user-2", "prefix match")
}

func TestSearch_ByName(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	hits, err := idx.Search(context.Background(), "Robert", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-3"}, ids(hits))

	hits, err = idx.Search(context.Background(), "Austin", 10)
	require.NoError(t, err)
	assert.Contains(t, ids(hits), "user-2", "fuzzy match tolerates one edit")
}

func TestSearch_HandleWithUnderscore(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	hits, err := idx.Search(context.Background(), "bookworm", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-3"}, ids(hits))
}

func TestSearch_EmptyAndLimit(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	hits, err := idx.Search(context.Background(), "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Search(context.Background(), "jane", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndexUser_ReplaceAndDelete(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	renamed := user("user-1", "jdoe", "Jane", "Doe")
	require.NoError(t, idx.IndexUser(NewUserDocument(renamed)))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	hits, err := idx.Search(context.Background(), "jdoe", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "user-1", hits[0].ID)

	require.NoError(t, idx.DeleteUser("user-1"))
	count, err = idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestOpen_ReusesAndRebuildsOnVersionChange(t *testing.T) {
	dir := t.TempDir()

	idx, rebuilt, err := Open(Options{DataPath: dir})
	require.NoError(t, err)
	require.True(t, rebuilt)
	require.NoError(t, idx.IndexUser(NewUserDocument(user("user-1", "alice", "Alice", ""))))
	require.NoError(t, idx.Close())

	idx, rebuilt, err = Open(Options{DataPath: dir})
	require.NoError(t, err)
	assert.False(t, rebuilt)
	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
	require.NoError(t, idx.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.version"), []byte("0"), 0o644))

	idx, rebuilt, err = Open(Options{DataPath: dir})
	require.NoError(t, err)
	defer idx.Close()
	assert.True(t, rebuilt)
	count, err = idx.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRebuild_Empties(t *testing.T) {
	idx := setupTestIndex(t)
	seed(t, idx)

	require.NoError(t, idx.Rebuild())
	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}
