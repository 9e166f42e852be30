package session

import "errors"

var (
	// ErrSessionNotFound is returned when no session matches a token.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSession is returned when saving a malformed session.
	ErrInvalidSession = errors.New("invalid session")

	// ErrFailedToGenerateToken is returned when token generation fails.
	ErrFailedToGenerateToken = errors.New("failed to generate session token")
)
