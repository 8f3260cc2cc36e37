package auth

import "time"

// Claims is the decrypted payload of an identity token.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Guest  bool   `json:"guest"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Identity is who a request acts as. A guest has no user ID, reads the
// all-users feed and may not mutate anything.
type Identity struct {
	UserID string
	Guest  bool
}

// Identity returns the request identity carried by c.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Guest: c.Guest}
}
