// Package sse pushes per-user notification events to connected clients over
// Server-Sent Events.
package sse

import (
	"time"

	"github.com/shelfieapp/shelfie-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventNotificationCreated is sent to a recipient when someone likes,
	// comments on or replies to their post.
	EventNotificationCreated EventType = "notification.created"
	// EventNotificationDeleted is sent when an unlike retracts a notification.
	EventNotificationDeleted EventType = "notification.deleted"
	// EventNotificationsRead is sent when the recipient marks everything read
	// so other open sessions can clear their badge.
	EventNotificationsRead EventType = "notification.read_all"

	// EventConnected is the first event on every stream.
	EventConnected EventType = "connected"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID restricts delivery to one user's streams. Empty means everyone.
	UserID string `json:"-"`
}

// NotificationEventData is the payload of notification.created.
type NotificationEventData struct {
	Notification *domain.Notification `json:"notification"`
}

// NotificationDeletedEventData is the payload of notification.deleted.
type NotificationDeletedEventData struct {
	NotificationID string `json:"notificationId"`
	BookID         string `json:"bookId"`
}

// NotificationsReadEventData is the payload of notification.read_all.
type NotificationsReadEventData struct {
	Updated int `json:"updated"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewNotificationCreatedEvent targets the notification's recipient.
func NewNotificationCreatedEvent(n *domain.Notification) Event {
	return Event{
		Type:      EventNotificationCreated,
		UserID:    n.RecipientID,
		Data:      NotificationEventData{Notification: n},
		Timestamp: time.Now(),
	}
}

// NewNotificationDeletedEvent targets the deleted notification's recipient.
func NewNotificationDeletedEvent(n *domain.Notification) Event {
	return Event{
		Type:   EventNotificationDeleted,
		UserID: n.RecipientID,
		Data: NotificationDeletedEventData{
			NotificationID: n.ID,
			BookID:         n.BookID,
		},
		Timestamp: time.Now(),
	}
}

// NewNotificationsReadEvent targets recipientID.
func NewNotificationsReadEvent(recipientID string, updated int) Event {
	return Event{
		Type:      EventNotificationsRead,
		UserID:    recipientID,
		Data:      NotificationsReadEventData{Updated: updated},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}

// Emitter accepts events for delivery. The Manager delivers them to local
// streams; the event bus fans them out across instances first.
type Emitter interface {
	Emit(event Event)
}

// Discard is an Emitter that drops everything.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(Event) {}
