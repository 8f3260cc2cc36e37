// Package domain contains the Shelfie entities and the pure rules that keep
// them consistent. Nothing here touches storage.
package domain

import "time"

// Document carries the identity and timestamps every stored entity has.
// It is embedded in User, Book and Notification.
type Document struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (d *Document) InitTimestamps() {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
}

// Touch bumps UpdatedAt. Call it on every mutation; the feed orders by it.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
}
