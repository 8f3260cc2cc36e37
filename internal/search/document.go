// Package search keeps a Bleve full-text index of user profiles so readers can
// find each other by handle or name.
package search

import (
	"strings"

	"github.com/shelfieapp/shelfie-server/internal/domain"
)

// UserDocument is what gets indexed per user.
type UserDocument struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Bio      string `json:"bio,omitempty"`
}

// NewUserDocument projects the searchable fields of u.
func NewUserDocument(u *domain.User) *UserDocument {
	return &UserDocument{
		ID:       u.ID,
		Username: u.Username,
		Name:     strings.TrimSpace(u.GivenName + " " + u.FamilyName),
		Bio:      u.Bio,
	}
}

// toMap keeps field names in line with the mapping.
func (d *UserDocument) toMap() map[string]any {
	m := map[string]any{
		"id":       d.ID,
		"username": d.Username,
		"name":     d.Name,
	}
	if d.Bio != "" {
		m["bio"] = d.Bio
	}
	return m
}
