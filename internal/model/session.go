package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the signed-in user as returned by POST /login.
type Session struct {
	ID       ResourceID `json:"id,omitempty"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	IsAdmin  bool       `json:"is_admin,omitempty"`
	// Token is opaque to the client. When it is a JWT its exp claim bounds the session.
	Token string `json:"token,omitempty"`
}

// Expired reports whether the session token is a JWT whose expiry has passed.
// Non-JWT tokens and tokens without exp never expire on the client.
func (s Session) Expired(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
