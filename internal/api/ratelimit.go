package api

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/shelfieapp/shelfie-server/internal/errors"
)

const rateLimitMessage = "Too many requests. Please try again later."

// checkRateLimit consumes one token for key.
func (s *Server) checkRateLimit(key string) error {
	if s.limiter.Allow(key) {
		return nil
	}
	s.logger.Warn("rate limit exceeded", "key", key)
	return domainerrors.RateLimited(rateLimitMessage)
}

// limitActor rate limits mutations per acting user.
func (s *Server) limitActor(userID string) error {
	return s.checkRateLimit("user:" + userID)
}

// limitClient rate limits unauthenticated endpoints per client IP.
func (s *Server) limitClient(ip string) error {
	return s.checkRateLimit("ip:" + ip)
}

// clientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func clientIP(hctx huma.Context) string {
	if xff := hctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := hctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	addr := hctx.RemoteAddr()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
