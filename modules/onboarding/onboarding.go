// Package onboarding provisions tenants and their admin accounts:
// restaurant signup, admin invitations, and invite acceptance.
// New tenants start on the entry tier with a 30-day trial.
package onboarding

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTrialDays is the trial length granted at signup.
const DefaultTrialDays = 30

// inviteTTL bounds how long an invitation link stays valid.
const inviteTTL = 7 * 24 * time.Hour

// Admin is a staff account able to manage a tenant's venues.
type Admin struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Invitation is a pending admin invite delivered by email.
type Invitation struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	Email      string
	Token      string
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	CreatedAt  time.Time
}

// Expired reports whether the invite can no longer be accepted.
func (i Invitation) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}
