package session

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated principal attached to a session.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Session pairs an opaque token with an optional identity. Anonymous
// sessions carry a nil identity until authentication upgrades them.
type Session struct {
	Token     string
	Identity  *Identity
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsAuthenticated reports whether the session carries an identity.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Identity != nil
}

// IsExpired reports whether the session has passed its deadline.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}
