package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/service"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "signIn",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions",
		Summary:     "Sign in",
		Description: "Finds or creates the user for a verified Google profile and issues an identity token",
		Tags:        []string{"Sessions"},
	}, s.handleSignIn)

	huma.Register(s.api, huma.Operation{
		OperationID: "guestSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/guest",
		Summary:     "Guest session",
		Description: "Issues a read-only token whose feed includes every user",
		Tags:        []string{"Sessions"},
	}, s.handleGuestSession)
}

// SignInRequest is the Google profile of the person signing in.
type SignInRequest struct {
	GoogleID   string `json:"googleId,omitempty" doc:"Google account ID"`
	Email      string `json:"email,omitempty" doc:"Email address"`
	GivenName  string `json:"given_name,omitempty" doc:"Given name"`
	FamilyName string `json:"family_name,omitempty" doc:"Family name"`
	Picture    string `json:"picture,omitempty" doc:"Avatar URL"`
}

// SignInInput wraps the sign in request for Huma.
type SignInInput struct {
	Body SignInRequest

	ip string
}

// Resolve implements huma.Resolver.
func (i *SignInInput) Resolve(hctx huma.Context) []error {
	i.ip = clientIP(hctx)
	return nil
}

// SessionResponse contains the signed-in user and their token.
type SessionResponse struct {
	User    *domain.User `json:"user" doc:"Signed-in user"`
	Token   string       `json:"token" doc:"Identity token for the Authorization header"`
	Created bool         `json:"created" doc:"True when this sign in created the account"`
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Status int
	Body   SessionResponse
}

// GuestSessionInput contains parameters for creating a guest session.
type GuestSessionInput struct {
	ip string
}

// Resolve implements huma.Resolver.
func (i *GuestSessionInput) Resolve(hctx huma.Context) []error {
	i.ip = clientIP(hctx)
	return nil
}

// GuestSessionResponse contains a guest token.
type GuestSessionResponse struct {
	Token string `json:"token" doc:"Read-only identity token"`
}

// GuestSessionOutput wraps the guest session response for Huma.
type GuestSessionOutput struct {
	Body GuestSessionResponse
}

func (s *Server) handleSignIn(ctx context.Context, input *SignInInput) (*SessionOutput, error) {
	if err := s.limitClient(input.ip); err != nil {
		return nil, err
	}

	user, created, err := s.services.User.SignIn(ctx, service.SignInRequest{
		GoogleID:   input.Body.GoogleID,
		Email:      input.Body.Email,
		GivenName:  input.Body.GivenName,
		FamilyName: input.Body.FamilyName,
		Picture:    input.Body.Picture,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueUser(user.ID)
	if err != nil {
		s.logger.Error("failed to issue token", "user_id", user.ID, "error", err)
		return nil, huma.Error500InternalServerError("Failed to issue token")
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	return &SessionOutput{
		Status: status,
		Body:   SessionResponse{User: user, Token: token, Created: created},
	}, nil
}

func (s *Server) handleGuestSession(_ context.Context, input *GuestSessionInput) (*GuestSessionOutput, error) {
	if err := s.limitClient(input.ip); err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueGuest()
	if err != nil {
		s.logger.Error("failed to issue guest token", "error", err)
		return nil, huma.Error500InternalServerError("Failed to issue token")
	}

	return &GuestSessionOutput{Body: GuestSessionResponse{Token: token}}, nil
}
