package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfieapp/shelfie-server/internal/service"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "followUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{username}/follow",
		Summary:     "Follow user",
		Description: "Follows a user. Following someone who follows you back makes you friends.",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "unfollowUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{username}/follow",
		Summary:     "Unfollow user",
		Description: "Stops following a user. Unfollowing someone you do not follow is a no-op.",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnfollow)
}

// FollowInput contains parameters for following or unfollowing.
type FollowInput struct {
	Authorization string `header:"Authorization"`
	Username      string `path:"username" doc:"Handle of the user to (un)follow"`
}

// FollowOutput wraps the follow result for Huma.
type FollowOutput struct {
	Body *service.FollowResult
}

func (s *Server) handleFollow(ctx context.Context, input *FollowInput) (*FollowOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.limitActor(userID); err != nil {
		return nil, err
	}

	result, err := s.services.Social.Follow(ctx, userID, input.Username)
	if err != nil {
		return nil, err
	}
	return &FollowOutput{Body: result}, nil
}

func (s *Server) handleUnfollow(ctx context.Context, input *FollowInput) (*UserOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.limitActor(userID); err != nil {
		return nil, err
	}

	user, err := s.services.Social.Unfollow(ctx, userID, input.Username)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}
