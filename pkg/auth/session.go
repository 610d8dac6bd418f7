// Package auth owns the session lifecycle: the persisted session record,
// the Manager that is its sole writer, and the reactive Binding that
// keeps observers in sync with it.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/esms-io/esms-go/pkg/model"
)

// DefaultSessionKey is the well-known store key the session record
// lives under. Sibling observers key their change notifications on it.
const DefaultSessionKey = "esms.session"

// Session is an authenticated principal's credentials plus a profile
// snapshot. It is overwritten wholesale on every refresh, never merged.
type Session struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken,omitempty"`
	User         model.User `json:"user"`
	// ExpiresAt is an epoch-millisecond instant; zero means the session
	// never expires unless explicitly invalidated.
	ExpiresAt int64 `json:"expiresAt,omitempty"`
}

// Credentials is the login exchange payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// expiry resolves the session's expiry instant. When the record carries
// no explicit ExpiresAt but the access token is a JWT, the exp claim is
// used instead; the parse is unverified because the server stays the
// authority, the client only needs a renewal hint.
func (s *Session) expiry() time.Time {
	if s.ExpiresAt > 0 {
		return time.UnixMilli(s.ExpiresAt)
	}
	if s.AccessToken == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
