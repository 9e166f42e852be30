// Package billing keeps tenant subscription records in sync with the
// payment provider. Paddle is the source of truth for lifecycle
// changes: webhooks arrive here, pass the transition rules, and are
// fanned out so caches can invalidate.
package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/thefrankalbert/attabl/pkg/plan"
)

// Record is the stored subscription state for one tenant.
type Record struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Tier          plan.Tier
	Status        plan.Status
	ProviderSubID string
	TrialEndsAt   *time.Time
	PeriodEndsAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Subscription converts the record to the plan engine's value type.
func (r Record) Subscription() plan.Subscription {
	return plan.Subscription{
		Tier:        r.Tier,
		Status:      r.Status,
		TrialEndsAt: r.TrialEndsAt,
	}
}

// Event is published on every applied subscription change so other
// parts of the app (tenant cache, websockets) can react.
type Event struct {
	TenantID   uuid.UUID
	FromStatus plan.Status
	ToStatus   plan.Status
	Tier       plan.Tier
}
