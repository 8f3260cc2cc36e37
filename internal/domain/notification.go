package domain

// NotificationType is the engagement event a notification reports.
type NotificationType string

// Notification types.
const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationReply   NotificationType = "reply"
)

// Notification tells a recipient that someone engaged with their book or
// comment. SenderUsername and BookTitle are snapshots from creation time.
//
// For likes there is at most one notification per (recipient, sender, book):
// it is created on like and deleted on the matching unlike.
type Notification struct {
	Document
	RecipientID    string           `json:"recipientId"`
	SenderID       string           `json:"senderId"`
	SenderUsername string           `json:"senderUsername"`
	Type           NotificationType `json:"type"`
	BookID         string           `json:"bookId"`
	BookTitle      string           `json:"bookTitle"`
	CommentText    string           `json:"commentText,omitempty"`
	IsRead         bool             `json:"isRead"`
}

// NotificationMatch selects notifications for delete-by-match.
type NotificationMatch struct {
	RecipientID string
	SenderID    string
	Type        NotificationType
	BookID      string
}

// Matches reports whether n satisfies every field of m.
func (m NotificationMatch) Matches(n *Notification) bool {
	return n.RecipientID == m.RecipientID &&
		n.SenderID == m.SenderID &&
		n.Type == m.Type &&
		n.BookID == m.BookID
}
