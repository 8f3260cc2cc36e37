package badgerdb

import (
	"context"
	"time"

	"github.com/shelfieapp/shelfie-server/internal/domain"
)

// CreateNotification stores a new notification.
func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) error {
	return s.notifications.Create(ctx, n.ID, n)
}

// GetNotification retrieves a notification by ID.
func (s *Store) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	return s.notifications.Get(ctx, id)
}

// UpdateNotification replaces an existing notification.
func (s *Store) UpdateNotification(ctx context.Context, n *domain.Notification) error {
	return s.notifications.Update(ctx, n.ID, n)
}

// DeleteNotification removes a notification.
func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	return s.notifications.Delete(ctx, id)
}

// DeleteNotificationsMatching deletes every notification under the match
// index prefix for m.
func (s *Store) DeleteNotificationsMatching(ctx context.Context, m domain.NotificationMatch) ([]*domain.Notification, error) {
	ids, err := s.notifications.ScanIndex(ctx, idxMatch, matchPrefix(m), 0)
	if err != nil {
		return nil, err
	}
	found, err := s.notifications.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	deleted := make([]*domain.Notification, 0, len(found))
	for _, n := range found {
		if err := s.notifications.Delete(ctx, n.ID); err != nil {
			return deleted, err
		}
		deleted = append(deleted, n)
	}
	return deleted, nil
}

// ListNotifications returns a recipient's newest notifications.
func (s *Store) ListNotifications(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error) {
	ids, err := s.notifications.ScanIndex(ctx, idxRecipientCreated, recipientID+":", limit)
	if err != nil {
		return nil, err
	}
	return s.notifications.GetMany(ctx, ids)
}

// CountUnreadNotifications counts a recipient's unread notifications.
func (s *Store) CountUnreadNotifications(ctx context.Context, recipientID string) (int, error) {
	all, err := s.ListNotifications(ctx, recipientID, 0)
	if err != nil {
		return 0, err
	}

	unread := 0
	for _, n := range all {
		if !n.IsRead {
			unread++
		}
	}
	return unread, nil
}

// MarkAllNotificationsRead flags every unread notification as read.
// Each notification is its own write.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, recipientID string) (int, error) {
	all, err := s.ListNotifications(ctx, recipientID, 0)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	changed := 0
	for _, n := range all {
		if n.IsRead {
			continue
		}
		n.IsRead = true
		n.UpdatedAt = now
		if err := s.notifications.Update(ctx, n.ID, n); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}
