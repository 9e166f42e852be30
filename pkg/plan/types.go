package plan

import "strings"

// Tier is a subscription plan tier. The set is closed; unknown values
// degrade to TierEntry everywhere they are interpreted.
type Tier string

const (
	TierEntry      Tier = "entry"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// tierRank orders tiers from lowest to highest.
var tierRank = map[Tier]int{
	TierEntry:      0,
	TierPremium:    1,
	TierEnterprise: 2,
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// ParseTier normalizes a stored tier value, falling back to TierEntry
// for unknown or corrupt input. Under-grant rather than over-grant.
func ParseTier(s string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return TierEntry
	}
	return t
}

// Status is the lifecycle state of a tenant subscription.
type Status string

const (
	StatusTrialing  Status = "trialing"
	StatusActive    Status = "active"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
	StatusPaused    Status = "paused"
)

// ParseStatus normalizes a stored status value. Unknown values are kept
// as-is so callers can log them; the predicates treat them as usable.
func ParseStatus(s string) Status {
	switch v := Status(strings.ToLower(strings.TrimSpace(s))); v {
	case StatusTrialing, StatusActive, StatusPastDue, StatusCancelled, StatusPaused:
		return v
	case "canceled":
		return StatusCancelled
	default:
		return Status(v)
	}
}

// IsUsable reports whether a subscription in this status still grants
// access to the stored plan. Past-due subscriptions remain usable as a
// grace period; only cancellation blocks access.
func (s Status) IsUsable() bool {
	return s != StatusCancelled
}

// Resource is a countable tenant resource capped per tier.
type Resource string

const (
	ResourceAdmins    Resource = "admins"
	ResourceVenues    Resource = "venues"
	ResourceMenuItems Resource = "menu_items"
	ResourceSounds    Resource = "sounds"
)

// Unlimited marks a resource with no cap (-1 for SQL compatibility).
const Unlimited int64 = -1

// Feature is a plan capability that is either on or off for a tier.
// Cardinality of resource-backed capabilities is expressed through
// Resource limits instead.
type Feature string

const (
	FeatureInventory       Feature = "inventory"
	FeatureAnalytics       Feature = "analytics"
	FeatureCustomBranding  Feature = "custom_branding"
	FeaturePrioritySupport Feature = "priority_support"
)
