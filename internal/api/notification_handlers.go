package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfieapp/shelfie-server/internal/domain"
)

func (s *Server) registerNotificationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications",
		Summary:     "List notifications",
		Description: "Returns the 50 newest notifications for the caller",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListNotifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "unreadNotificationCount",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications/unread-count",
		Summary:     "Unread count",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnreadCount)

	huma.Register(s.api, huma.Operation{
		OperationID: "markAllNotificationsRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/read-all",
		Summary:     "Mark all read",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkAllRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "markNotificationRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/{id}/read",
		Summary:     "Mark read",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteNotification",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notifications/{id}",
		Summary:     "Delete notification",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteNotification)
}

// === DTOs ===

// NotificationsResponse contains a list of notifications.
type NotificationsResponse struct {
	Notifications []*domain.Notification `json:"notifications" doc:"Notifications, newest first"`
}

// NotificationsOutput wraps the notifications response for Huma.
type NotificationsOutput struct {
	Body NotificationsResponse
}

// UnreadCountResponse contains the unread notification count.
type UnreadCountResponse struct {
	Count int `json:"count" doc:"Number of unread notifications"`
}

// UnreadCountOutput wraps the unread count response for Huma.
type UnreadCountOutput struct {
	Body UnreadCountResponse
}

// MarkAllReadResponse reports how many notifications changed.
type MarkAllReadResponse struct {
	Updated int `json:"updated" doc:"Number of notifications marked read"`
}

// MarkAllReadOutput wraps the mark all read response for Huma.
type MarkAllReadOutput struct {
	Body MarkAllReadResponse
}

// NotificationIDInput contains parameters for addressing a notification.
type NotificationIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Notification ID"`
}

// NotificationOutput wraps a notification for Huma.
type NotificationOutput struct {
	Body *domain.Notification
}

// === Handlers ===

func (s *Server) handleListNotifications(ctx context.Context, input *AuthInput) (*NotificationsOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}

	notifications, err := s.services.Notification.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &NotificationsOutput{Body: NotificationsResponse{Notifications: notifications}}, nil
}

func (s *Server) handleUnreadCount(ctx context.Context, input *AuthInput) (*UnreadCountOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}

	count, err := s.services.Notification.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountOutput{Body: UnreadCountResponse{Count: count}}, nil
}

func (s *Server) handleMarkAllRead(ctx context.Context, input *AuthInput) (*MarkAllReadOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}

	updated, err := s.services.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MarkAllReadOutput{Body: MarkAllReadResponse{Updated: updated}}, nil
}

func (s *Server) handleMarkRead(ctx context.Context, input *NotificationIDInput) (*NotificationOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Notification.MarkRead(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}
	return &NotificationOutput{Body: n}, nil
}

func (s *Server) handleDeleteNotification(ctx context.Context, input *NotificationIDInput) (*MessageOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Notification.Delete(ctx, input.ID, userID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Notification deleted"}}, nil
}
