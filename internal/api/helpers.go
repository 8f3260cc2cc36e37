package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfieapp/shelfie-server/internal/auth"
	domainerrors "github.com/shelfieapp/shelfie-server/internal/errors"
)

// authenticateRequest validates the Authorization header and returns the identity.
func (s *Server) authenticateRequest(authHeader string) (auth.Identity, error) {
	if authHeader == "" {
		return auth.Identity{}, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return auth.Identity{}, huma.Error401Unauthorized("Invalid authorization header format")
	}

	claims, err := s.tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return auth.Identity{}, huma.Error401Unauthorized("Invalid or expired token")
	}

	return claims.Identity(), nil
}

// requireMember authenticates the request and rejects guest sessions.
// Returns the acting user ID.
func (s *Server) requireMember(authHeader string) (string, error) {
	identity, err := s.authenticateRequest(authHeader)
	if err != nil {
		return "", err
	}
	if identity.Guest {
		return "", domainerrors.Forbidden("Guest sessions are read-only")
	}
	return identity.UserID, nil
}
