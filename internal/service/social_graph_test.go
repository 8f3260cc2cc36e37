package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfieapp/shelfie-server/internal/errors"
)

func TestSocialGraphService_FollowIsSymmetric(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	createTestUser(t, env.store, "user-a", "alice")
	createTestUser(t, env.store, "user-b", "bob")

	res, err := env.social.Follow(ctx, "user-a", "bob")
	require.NoError(t, err)
	assert.False(t, res.IsFriend)
	assert.Equal(t, []string{"bob"}, res.User.Following)
	assert.Equal(t, 1, res.User.NumFollowing)

	alice := mustGetUser(t, env.store, "user-a")
	bob := mustGetUser(t, env.store, "user-b")
	assert.Equal(t, []string{"bob"}, alice.Following)
	assert.Equal(t, []string{"alice"}, bob.Followers)
	assert.Equal(t, len(alice.Following), alice.NumFollowing)
	assert.Equal(t, 0, bob.NumFollowing)
	assert.Equal(t, 0, alice.NumFriends)
	assert.Equal(t, 0, bob.NumFriends)
}

func TestSocialGraphService_MutualFriends(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	createTestUser(t, env.store, "user-a", "alice")
	createTestUser(t, env.store, "user-b", "bob")

	_, err := env.social.Follow(ctx, "user-a", "bob")
	require.NoError(t, err)
	res, err := env.social.Follow(ctx, "user-b", "alice")
	require.NoError(t, err)
	assert.True(t, res.IsFriend)

	assert.Equal(t, 1, mustGetUser(t, env.store, "user-a").NumFriends)
	assert.Equal(t, 1, mustGetUser(t, env.store, "user-b").NumFriends)

	// Unfollow in either direction drops the friendship on both sides.
	_, err = env.social.Unfollow(ctx, "user-b", "alice")
	require.NoError(t, err)

	alice := mustGetUser(t, env.store, "user-a")
	bob := mustGetUser(t, env.store, "user-b")
	assert.Equal(t, 0, alice.NumFriends)
	assert.Equal(t, 0, bob.NumFriends)
	assert.Equal(t, 1, alice.NumFollowing)
	assert.Equal(t, 0, bob.NumFollowing)
	assert.Empty(t, alice.Followers)
	assert.Equal(t, []string{"alice"}, bob.Followers)
}

func TestSocialGraphService_CannotFollowSelf(t *testing.T) {
	env := setupTestEnv(t)
	before := createTestUser(t, env.store, "user-a", "alice")

	_, err := env.social.Follow(context.Background(), "user-a", "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidOperation)

	after := mustGetUser(t, env.store, "user-a")
	assert.Empty(t, after.Following)
	assert.Empty(t, after.Followers)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt), "self-follow must not write")
}

func TestSocialGraphService_FollowTwice(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	createTestUser(t, env.store, "user-a", "alice")
	createTestUser(t, env.store, "user-b", "bob")

	_, err := env.social.Follow(ctx, "user-a", "bob")
	require.NoError(t, err)

	_, err = env.social.Follow(ctx, "user-a", "bob")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	assert.Equal(t, []string{"alice"}, mustGetUser(t, env.store, "user-b").Followers)
}

func TestSocialGraphService_FollowUnknownUser(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	createTestUser(t, env.store, "user-a", "alice")

	_, err := env.social.Follow(ctx, "user-a", "nobody")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.social.Follow(ctx, "user-missing", "alice")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.social.Unfollow(ctx, "user-a", "nobody")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSocialGraphService_UnfollowWhenNotFollowingIsNoop(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	createTestUser(t, env.store, "user-a", "alice")
	bobBefore := createTestUser(t, env.store, "user-b", "bob")

	user, err := env.social.Unfollow(ctx, "user-a", "bob")
	require.NoError(t, err)
	assert.Equal(t, "user-a", user.ID)
	assert.Empty(t, user.Following)

	bobAfter := mustGetUser(t, env.store, "user-b")
	assert.True(t, bobBefore.UpdatedAt.Equal(bobAfter.UpdatedAt))
}

func TestSocialGraphService_RetryRepairsHalfAppliedFollow(t *testing.T) {
	flaky := newFlakyStore(newTestStore(t))
	env := setupTestEnvWithStore(t, flaky)
	ctx := context.Background()

	createTestUser(t, flaky, "user-a", "alice")
	createTestUser(t, flaky, "user-b", "bob")

	flaky.failNextUpdate("user-b")
	_, err := env.social.Follow(ctx, "user-a", "bob")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInternal)

	// The actor side landed, the target side did not.
	assert.Equal(t, []string{"bob"}, mustGetUser(t, flaky, "user-a").Following)
	assert.Empty(t, mustGetUser(t, flaky, "user-b").Followers)

	res, err := env.social.Follow(ctx, "user-a", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, res.User.Following)

	bob := mustGetUser(t, flaky, "user-b")
	assert.Equal(t, []string{"alice"}, bob.Followers)

	_, err = env.social.Follow(ctx, "user-a", "bob")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}
