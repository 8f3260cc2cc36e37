package domain

import (
	"regexp"
	"slices"
)

// DefaultBio is assigned to every new account.
const DefaultBio = "Welcome to Shelfie!"

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidUsername reports whether s is a well-formed handle.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// User is a Shelfie account.
//
// Following and Followers hold handles, not IDs. The social graph keeps them
// symmetric across users: B is in A.Followers exactly when A is in
// B.Following. NumFollowing and NumFriends are caches derived by Recount.
type User struct {
	Document
	GoogleID                string   `json:"googleId"`
	Email                   string   `json:"email"`
	GivenName               string   `json:"given_name"`
	FamilyName              string   `json:"family_name"`
	Username                string   `json:"username"`
	Bio                     string   `json:"bio"`
	ProfilePicture          string   `json:"profilePicture,omitempty"`
	HasCustomProfilePicture bool     `json:"hasCustomProfilePicture"`
	Following               []string `json:"following"`
	Followers               []string `json:"followers"`
	NumFollowing            int      `json:"num_following"`
	NumFriends              int      `json:"num_friends"`
}

// IsFollowing reports whether u follows handle.
func (u *User) IsFollowing(handle string) bool {
	return slices.Contains(u.Following, handle)
}

// HasFollower reports whether handle follows u.
func (u *User) HasFollower(handle string) bool {
	return slices.Contains(u.Followers, handle)
}

// IsMutual reports whether u and handle follow each other.
func (u *User) IsMutual(handle string) bool {
	return u.IsFollowing(handle) && u.HasFollower(handle)
}

// AddFollowing records that u follows handle. It reports whether the list changed.
func (u *User) AddFollowing(handle string) bool {
	if u.IsFollowing(handle) {
		return false
	}
	u.Following = append(u.Following, handle)
	return true
}

// RemoveFollowing drops handle from u.Following. It reports whether the list changed.
func (u *User) RemoveFollowing(handle string) bool {
	n := len(u.Following)
	u.Following = slices.DeleteFunc(u.Following, func(h string) bool { return h == handle })
	return len(u.Following) != n
}

// AddFollower records that handle follows u. It reports whether the list changed.
func (u *User) AddFollower(handle string) bool {
	if u.HasFollower(handle) {
		return false
	}
	u.Followers = append(u.Followers, handle)
	return true
}

// RemoveFollower drops handle from u.Followers. It reports whether the list changed.
func (u *User) RemoveFollower(handle string) bool {
	n := len(u.Followers)
	u.Followers = slices.DeleteFunc(u.Followers, func(h string) bool { return h == handle })
	return len(u.Followers) != n
}

// RenameInGraph replaces oldHandle with newHandle in both lists.
func (u *User) RenameInGraph(oldHandle, newHandle string) bool {
	changed := false
	for i, h := range u.Following {
		if h == oldHandle {
			u.Following[i] = newHandle
			changed = true
		}
	}
	for i, h := range u.Followers {
		if h == oldHandle {
			u.Followers[i] = newHandle
			changed = true
		}
	}
	return changed
}

// Recount recomputes the cached counts from the lists.
func (u *User) Recount() {
	u.NumFollowing = len(u.Following)

	friends := 0
	for _, h := range u.Following {
		if slices.Contains(u.Followers, h) {
			friends++
		}
	}
	u.NumFriends = friends
}

// Related returns every handle u is connected to in either direction, once.
func (u *User) Related() []string {
	out := make([]string, 0, len(u.Following)+len(u.Followers))
	out = append(out, u.Following...)
	for _, h := range u.Followers {
		if !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}

// PublicUser is the subset of a profile shown to other users.
type PublicUser struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	GivenName      string `json:"given_name"`
	FamilyName     string `json:"family_name"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	NumFollowing   int    `json:"num_following"`
	NumFriends     int    `json:"num_friends"`
}

// Public returns the public projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Username:       u.Username,
		GivenName:      u.GivenName,
		FamilyName:     u.FamilyName,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		NumFollowing:   u.NumFollowing,
		NumFriends:     u.NumFriends,
	}
}
