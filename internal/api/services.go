package api

import "github.com/shelfieapp/shelfie-server/internal/service"

// Services groups all business logic services used by the API server.
type Services struct {
	User         *service.UserService
	Social       *service.SocialGraphService
	Book         *service.BookService
	Feed         *service.FeedService
	Engagement   *service.EngagementService
	Notification *service.NotificationService
}
