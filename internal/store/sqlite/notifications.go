package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CreateNotification inserts a new notification.
func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) error {
	doc, err := encodeDoc(n)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, sender_id, type, book_id, is_read, created_at, updated_at, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.RecipientID,
		n.SenderID,
		string(n.Type),
		n.BookID,
		boolToInt(n.IsRead),
		formatTime(n.CreatedAt),
		formatTime(n.UpdatedAt),
		doc,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("notification already exists")
	}
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// GetNotification retrieves a notification by ID.
func (s *Store) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM notifications WHERE id = ?`, id)
	return scanDoc[domain.Notification](row, store.ErrNotificationNotFound)
}

// UpdateNotification replaces an existing notification document.
func (s *Store) UpdateNotification(ctx context.Context, n *domain.Notification) error {
	doc, err := encodeDoc(n)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = ?, updated_at = ?, doc = ?
		WHERE id = ?`,
		boolToInt(n.IsRead),
		formatTime(n.UpdatedAt),
		doc,
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	return requireAffected(res, store.ErrNotificationNotFound)
}

// DeleteNotification removes a notification. Missing IDs are ignored.
func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// DeleteNotificationsMatching deletes all notifications matching m.
func (s *Store) DeleteNotificationsMatching(ctx context.Context, m domain.NotificationMatch) ([]*domain.Notification, error) {
	deleted, err := queryDocs[domain.Notification](ctx, s.db, `
		DELETE FROM notifications
		WHERE recipient_id = ? AND sender_id = ? AND type = ? AND book_id = ?
		RETURNING doc`,
		m.RecipientID, m.SenderID, string(m.Type), m.BookID,
	)
	if err != nil {
		return nil, fmt.Errorf("delete matching notifications: %w", err)
	}
	return deleted, nil
}

// ListNotifications returns a recipient's newest notifications.
func (s *Store) ListNotifications(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = -1 // SQLite reads a negative LIMIT as no limit.
	}
	return queryDocs[domain.Notification](ctx, s.db, `
		SELECT doc FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, recipientID, limit)
}

// CountUnreadNotifications counts a recipient's unread notifications.
func (s *Store) CountUnreadNotifications(ctx context.Context, recipientID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0`,
		recipientID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkAllNotificationsRead flags every unread notification of a recipient as
// read, keeping the JSON document in step with the column.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, recipientID string) (int, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = 1,
		    updated_at = ?,
		    doc = json_set(doc, '$.isRead', json('true'), '$.updatedAt', ?)
		WHERE recipient_id = ? AND is_read = 0`,
		formatTime(now),
		now.Format(time.RFC3339Nano),
		recipientID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
