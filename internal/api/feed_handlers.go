package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/service"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Get feed",
		Description: "Returns the 50 most recently updated posts by the caller and the users they follow. Guests see posts from everyone.",
		Tags:        []string{"Feed"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFeed)
}

// FeedResponse contains feed posts, newest activity first.
type FeedResponse struct {
	Posts []*domain.FeedPost `json:"posts" doc:"Posts decorated with author handle and avatar"`
}

// FeedOutput wraps the feed response for Huma.
type FeedOutput struct {
	Body FeedResponse
}

func (s *Server) handleGetFeed(ctx context.Context, input *AuthInput) (*FeedOutput, error) {
	identity, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	posts, err := s.services.Feed.Feed(ctx, service.FeedRequest{
		ViewerID:  identity.UserID,
		FollowAll: identity.Guest,
	})
	if err != nil {
		return nil, err
	}
	return &FeedOutput{Body: FeedResponse{Posts: posts}}, nil
}
