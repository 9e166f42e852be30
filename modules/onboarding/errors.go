package onboarding

import "errors"

var (
	ErrSlugTaken           = errors.New("tenant slug is already taken")
	ErrInvalidName         = errors.New("restaurant name does not yield a usable slug")
	ErrInviteNotFound      = errors.New("invitation not found")
	ErrInviteExpired       = errors.New("invitation has expired")
	ErrInviteAlreadyUsed   = errors.New("invitation has already been accepted")
	ErrAdminAlreadyExists  = errors.New("admin with this email already exists")
	ErrWeakPassword        = errors.New("password must be at least 8 characters")
	ErrFailedToCreateToken = errors.New("failed to generate invitation token")
)
