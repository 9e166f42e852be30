package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/thefrankalbert/attabl/pkg/plan"
)

// Tenant is a single restaurant account with the fields request-scoped
// code needs: routing identity, display data, and the subscription
// fields the plan engine interprets.
type Tenant struct {
	ID           uuid.UUID  `json:"id"`
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	LogoURL      string     `json:"logo_url"`
	PlanTier     string     `json:"plan"`
	Status       string     `json:"status"`
	TrialEndsAt  *time.Time `json:"trial_ends_at"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Subscription validates the stored subscription fields at the boundary
// and returns the value type the plan engine consumes. Unknown tier or
// status values degrade inside ParseTier/ParseStatus rather than here.
func (t *Tenant) Subscription() plan.Subscription {
	return plan.Subscription{
		Tier:        plan.ParseTier(t.PlanTier),
		Status:      plan.ParseStatus(t.Status),
		TrialEndsAt: t.TrialEndsAt,
	}
}

// Provider loads tenant records by slug (or any unique identifier).
type Provider interface {
	// GetBySlug retrieves a tenant by its routing slug.
	// Returns ErrTenantNotFound if no tenant matches.
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
}
