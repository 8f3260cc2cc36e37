package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	domainerrors "github.com/shelfieapp/shelfie-server/internal/errors"
	"github.com/shelfieapp/shelfie-server/internal/id"
	"github.com/shelfieapp/shelfie-server/internal/metrics"
	"github.com/shelfieapp/shelfie-server/internal/sse"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

// NotificationListLimit is how many notifications List returns.
const NotificationListLimit = 50

// NotificationService stores notifications and pushes them to connected
// recipients.
type NotificationService struct {
	store   store.Store
	events  sse.Emitter
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(store store.Store, events sse.Emitter, recorder metrics.Recorder, logger *slog.Logger) *NotificationService {
	if events == nil {
		events = sse.Discard
	}
	if recorder == nil {
		recorder = metrics.Nop
	}
	return &NotificationService{
		store:   store,
		events:  events,
		metrics: recorder,
		logger:  logger,
	}
}

// Create assigns n an ID and timestamps, stores it unread and pushes it to
// the recipient. A like the recipient was already notified of is kept as is
// and Create reports success without storing n.
func (s *NotificationService) Create(ctx context.Context, n *domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	notifID, err := id.Generate(id.PrefixNotification)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "generate notification id")
	}
	n.ID = notifID
	n.IsRead = false
	n.InitTimestamps()

	if err := s.store.CreateNotification(ctx, n); err != nil {
		if n.Type == domain.NotificationLike && errors.Is(err, store.ErrAlreadyExists) {
			s.logger.Debug("like already notified",
				"recipient_id", n.RecipientID, "sender_id", n.SenderID, "book_id", n.BookID)
			return nil
		}
		s.logger.Error("failed to create notification",
			"recipient_id", n.RecipientID, "type", n.Type, "book_id", n.BookID, "error", err)
		return translate(err, "create notification", msgNotificationNotFound)
	}

	s.metrics.NotificationCreated(string(n.Type))
	s.events.Emit(sse.NewNotificationCreatedEvent(n))
	s.logger.Debug("notification created",
		"notification_id", n.ID, "recipient_id", n.RecipientID, "type", n.Type)
	return nil
}

// Retract deletes every notification matching m and tells the recipient.
// Failures are logged, not returned.
func (s *NotificationService) Retract(ctx context.Context, m domain.NotificationMatch) {
	deleted, err := s.store.DeleteNotificationsMatching(ctx, m)
	if err != nil {
		s.logger.Warn("failed to retract notifications",
			"recipient_id", m.RecipientID, "sender_id", m.SenderID,
			"type", m.Type, "book_id", m.BookID, "error", err)
	}
	for _, n := range deleted {
		s.events.Emit(sse.NewNotificationDeletedEvent(n))
	}
}

// List returns the recipient's newest notifications.
func (s *NotificationService) List(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list, err := s.store.ListNotifications(ctx, recipientID, NotificationListLimit)
	if err != nil {
		return nil, translate(err, "list notifications", msgNotificationNotFound)
	}
	if list == nil {
		list = []*domain.Notification{}
	}
	return list, nil
}

// UnreadCount returns how many of the recipient's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count, err := s.store.CountUnreadNotifications(ctx, recipientID)
	if err != nil {
		return 0, translate(err, "count unread notifications", msgNotificationNotFound)
	}
	return count, nil
}

// MarkRead flags one of the recipient's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, recipientID string) (*domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := s.owned(ctx, notificationID, recipientID)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}

	n.IsRead = true
	n.Touch()
	if err := s.store.UpdateNotification(ctx, n); err != nil {
		return nil, translate(err, "mark notification read", msgNotificationNotFound)
	}
	return n, nil
}

// MarkAllRead flags every unread notification of the recipient as read and
// returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	updated, err := s.store.MarkAllNotificationsRead(ctx, recipientID)
	if err != nil {
		return 0, translate(err, "mark all notifications read", msgNotificationNotFound)
	}
	if updated > 0 {
		s.events.Emit(sse.NewNotificationsReadEvent(recipientID, updated))
	}
	return updated, nil
}

// Delete removes one of the recipient's notifications.
func (s *NotificationService) Delete(ctx context.Context, notificationID, recipientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := s.owned(ctx, notificationID, recipientID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteNotification(ctx, n.ID); err != nil {
		return translate(err, "delete notification", msgNotificationNotFound)
	}
	return nil
}

// owned loads a notification. Someone else's notification is reported as
// missing.
func (s *NotificationService) owned(ctx context.Context, notificationID, recipientID string) (*domain.Notification, error) {
	n, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		return nil, translate(err, "get notification", msgNotificationNotFound)
	}
	if n.RecipientID != recipientID {
		return nil, domainerrors.NotFound(msgNotificationNotFound)
	}
	return n, nil
}
