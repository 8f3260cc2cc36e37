package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/service"
)

const defaultSearchLimit = 20

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the signed-in user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Description: "Changes the handle, bio or avatar of the signed-in user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/search",
		Summary:     "Search users",
		Description: "Full-text search over handles and names",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserByUsername",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/by-username/{username}",
		Summary:     "Get user by handle",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUserByUsername)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserByGoogleID",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/by-google/{googleId}",
		Summary:     "Get user by Google ID",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUserByGoogleID)
}

// === DTOs ===

// AuthInput carries only the Authorization header.
type AuthInput struct {
	Authorization string `header:"Authorization"`
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body *domain.User
}

// UpdateProfileRequest is the request body for updating a profile.
// Omitted fields are left unchanged; an empty profilePicture clears it.
type UpdateProfileRequest struct {
	Username       *string `json:"username,omitempty" doc:"New handle"`
	Bio            *string `json:"bio,omitempty" doc:"Bio, HTML is converted to markdown"`
	ProfilePicture *string `json:"profilePicture,omitempty" doc:"Avatar URL"`
}

// UpdateProfileInput wraps the update profile request for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateProfileRequest
}

// SearchUsersInput contains parameters for searching users.
type SearchUsersInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search query"`
	Limit         int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (default 20)"`
}

// SearchUsersResponse contains matching users.
type SearchUsersResponse struct {
	Users []domain.PublicUser `json:"users" doc:"Matching users, best first"`
}

// SearchUsersOutput wraps the search response for Huma.
type SearchUsersOutput struct {
	Body SearchUsersResponse
}

// GetUserByUsernameInput contains parameters for looking up a handle.
type GetUserByUsernameInput struct {
	Authorization string `header:"Authorization"`
	Username      string `path:"username" doc:"User handle"`
}

// GetUserByGoogleIDInput contains parameters for looking up a Google ID.
type GetUserByGoogleIDInput struct {
	Authorization string `header:"Authorization"`
	GoogleID      string `path:"googleId" doc:"Google account ID"`
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, input *AuthInput) (*UserOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.UpdateProfile(ctx, userID, service.ProfileUpdate{
		Username:       input.Body.Username,
		Bio:            input.Body.Bio,
		ProfilePicture: input.Body.ProfilePicture,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleSearchUsers(ctx context.Context, input *SearchUsersInput) (*SearchUsersOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}

	users, err := s.services.User.SearchUsers(ctx, input.Query, limit)
	if err != nil {
		return nil, err
	}
	return &SearchUsersOutput{Body: SearchUsersResponse{Users: users}}, nil
}

func (s *Server) handleGetUserByUsername(ctx context.Context, input *GetUserByUsernameInput) (*UserOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	user, err := s.services.User.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleGetUserByGoogleID(ctx context.Context, input *GetUserByGoogleIDInput) (*UserOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	user, err := s.services.User.GetByGoogleID(ctx, input.GoogleID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}
