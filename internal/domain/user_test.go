package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidUsername(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alice", true},
		{"Alice_Smith-2", true},
		{"", false},
		{"alice smith", false},
		{"alice!", false},
		{"élodie", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidUsername(tt.in))
		})
	}
}

func TestUser_FollowListsAreSets(t *testing.T) {
	u := &User{}

	assert.True(t, u.AddFollowing("bob"))
	assert.False(t, u.AddFollowing("bob"))
	assert.True(t, u.AddFollower("bob"))
	assert.False(t, u.AddFollower("bob"))

	assert.Equal(t, []string{"bob"}, u.Following)
	assert.Equal(t, []string{"bob"}, u.Followers)

	assert.True(t, u.RemoveFollowing("bob"))
	assert.False(t, u.RemoveFollowing("bob"))
	assert.True(t, u.RemoveFollower("bob"))
	assert.False(t, u.RemoveFollower("bob"))
	assert.Empty(t, u.Following)
	assert.Empty(t, u.Followers)
}

func TestUser_Recount(t *testing.T) {
	u := &User{
		Following: []string{"bob", "carol", "dave"},
		Followers: []string{"carol", "erin", "dave"},
	}

	u.Recount()

	assert.Equal(t, 3, u.NumFollowing)
	assert.Equal(t, 2, u.NumFriends, "carol and dave are mutual")
	assert.True(t, u.IsMutual("carol"))
	assert.False(t, u.IsMutual("bob"))
	assert.False(t, u.IsMutual("erin"))
}

func TestUser_RenameInGraph(t *testing.T) {
	u := &User{
		Following: []string{"bob", "carol"},
		Followers: []string{"bob"},
	}

	assert.True(t, u.RenameInGraph("bob", "robert"))
	assert.Equal(t, []string{"robert", "carol"}, u.Following)
	assert.Equal(t, []string{"robert"}, u.Followers)

	assert.False(t, u.RenameInGraph("zed", "z"))
}

func TestUser_Related(t *testing.T) {
	u := &User{
		Following: []string{"bob", "carol"},
		Followers: []string{"carol", "dave"},
	}
	assert.ElementsMatch(t, []string{"bob", "carol", "dave"}, u.Related())
}

func TestUser_Public(t *testing.T) {
	u := &User{
		Document:       Document{ID: "user-1"},
		GoogleID:       "google-1",
		Email:          "alice@example.com",
		Username:       "alice",
		Bio:            DefaultBio,
		ProfilePicture: "https://img.example/a.png",
		NumFriends:     2,
	}

	p := u.Public()
	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "https://img.example/a.png", p.ProfilePicture)
	assert.Equal(t, 2, p.NumFriends)
}
