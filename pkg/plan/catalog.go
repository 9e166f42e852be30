package plan

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Plan describes a tier's resource caps and feature flags.
// The catalog is compile-time configuration: immutable after load,
// changed only by deployment.
type Plan struct {
	Tier     Tier
	Name     string
	Limits   map[Resource]int64
	Features []Feature
}

// HasFeature reports whether the boolean capability is enabled for this
// plan. Resource-backed capabilities are always accessible; only their
// cardinality is capped, checked separately via IsLimitReached.
func (p Plan) HasFeature(f Feature) bool {
	return slices.Contains(p.Features, f)
}

// LimitFor returns the cap for a resource. A resource missing from the
// plan is capped at zero — fail closed.
func (p Plan) LimitFor(res Resource) int64 {
	limit, ok := p.Limits[res]
	if !ok {
		return 0
	}
	return limit
}

// IsLimitReached reports whether current usage has reached the cap.
// The boundary is inclusive: sitting exactly at the cap counts as
// reached. Unlimited resources are never reached.
func (p Plan) IsLimitReached(res Resource, current int64) bool {
	limit := p.LimitFor(res)
	if limit == Unlimited {
		return false
	}
	return current >= limit
}

// Catalog is the static tier-to-plan table.
type Catalog struct {
	plans map[Tier]Plan
}

// NewCatalog builds a catalog from a tier map, deep-copying so callers
// cannot mutate it afterwards.
func NewCatalog(plans map[Tier]Plan) *Catalog {
	cp := make(map[Tier]Plan, len(plans))
	for tier, p := range plans {
		p.Tier = tier
		p.Limits = maps.Clone(p.Limits)
		p.Features = slices.Clone(p.Features)
		cp[tier] = p
	}
	return &Catalog{plans: cp}
}

// DefaultCatalog returns the built-in plan table.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[Tier]Plan{
		TierEntry: {
			Name: "Entry",
			Limits: map[Resource]int64{
				ResourceAdmins:    2,
				ResourceVenues:    1,
				ResourceMenuItems: 50,
				ResourceSounds:    5,
			},
		},
		TierPremium: {
			Name: "Premium",
			Limits: map[Resource]int64{
				ResourceAdmins:    5,
				ResourceVenues:    3,
				ResourceMenuItems: 500,
				ResourceSounds:    20,
			},
			Features: []Feature{FeatureInventory, FeatureAnalytics},
		},
		TierEnterprise: {
			Name: "Enterprise",
			Limits: map[Resource]int64{
				ResourceAdmins:    Unlimited,
				ResourceVenues:    Unlimited,
				ResourceMenuItems: Unlimited,
				ResourceSounds:    Unlimited,
			},
			Features: []Feature{
				FeatureInventory,
				FeatureAnalytics,
				FeatureCustomBranding,
				FeaturePrioritySupport,
			},
		},
	})
}

// Get returns the plan for a tier, falling back to the entry plan for
// unknown tiers. It never returns a zero Plan and never panics.
func (c *Catalog) Get(tier Tier) Plan {
	if p, ok := c.plans[tier]; ok {
		return p
	}
	return c.plans[TierEntry]
}

// EffectiveAt resolves the plan granted to a subscription at the given
// instant, applying trial upgrade and usability downgrade.
func (c *Catalog) EffectiveAt(sub Subscription, now time.Time) Plan {
	return c.Get(sub.EffectiveTierAt(now))
}

// Effective resolves the plan granted to a subscription as of now.
func (c *Catalog) Effective(sub Subscription) Plan {
	return c.EffectiveAt(sub, time.Now().UTC())
}

// CanAccessFeature reports whether the subscription's effective plan has
// the boolean feature enabled.
func (c *Catalog) CanAccessFeature(sub Subscription, f Feature) bool {
	return c.Effective(sub).HasFeature(f)
}

// IsLimitReached reports whether current usage has reached the
// subscription's effective cap for a resource. Counting is the caller's
// responsibility; this only compares.
func (c *Catalog) IsLimitReached(sub Subscription, res Resource, current int64) bool {
	return c.Effective(sub).IsLimitReached(res, current)
}

// RequireFeature returns ErrFeatureNotAvailable when the subscription's
// effective plan lacks the feature, for guards that reject rather than
// branch.
func (c *Catalog) RequireFeature(sub Subscription, f Feature) error {
	if !c.CanAccessFeature(sub, f) {
		return fmt.Errorf("%w: %s", ErrFeatureNotAvailable, f)
	}
	return nil
}

// Tiers returns the known tiers in ascending order.
func (c *Catalog) Tiers() []Tier {
	tiers := slices.Collect(maps.Keys(c.plans))
	slices.SortFunc(tiers, func(a, b Tier) int { return tierRank[a] - tierRank[b] })
	return tiers
}
