package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the wire shape of a session token. UID carries the user's
// primary key so the middleware can resolve the record without another
// lookup by email.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
}

// AuthClaims is the validated, transport-agnostic view handed to
// middleware and handlers once a token passes verification.
type AuthClaims struct {
	Subject  string
	UserID   string
	Expires  time.Time
	IssuedAt time.Time
}

func claimsFromToken(c *JWTClaims) AuthClaims {
	out := AuthClaims{
		Subject: c.Subject,
		UserID:  c.UID,
	}
	if out.UserID == "" {
		out.UserID = c.Subject
	}
	if c.ExpiresAt != nil {
		out.Expires = c.ExpiresAt.Time
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	return out
}
