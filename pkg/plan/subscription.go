package plan

import (
	"math"
	"time"
)

// Subscription is the subset of a tenant record the enforcement engine
// interprets. It is a value type with no behavior beyond pure derivation;
// transition enforcement belongs to the billing webhook integration.
type Subscription struct {
	Tier        Tier
	Status      Status
	TrialEndsAt *time.Time
}

// IsTrialActiveAt reports whether the subscription is in an active trial
// at the given instant. Requires trialing status, a trial deadline, and
// the deadline strictly in the future. The derived fact, not the stored
// fields alone, is the authority for trial gating.
func (s Subscription) IsTrialActiveAt(now time.Time) bool {
	return s.Status == StatusTrialing && s.TrialEndsAt != nil && s.TrialEndsAt.After(now)
}

// IsTrialActive reports whether the subscription is in an active trial now.
func (s Subscription) IsTrialActive() bool {
	return s.IsTrialActiveAt(time.Now().UTC())
}

// TrialDaysRemainingAt returns whole days left in the trial at the given
// instant, rounding up so that "less than one day left" reports 1.
// Returns 0 when no trial deadline is set or it has passed.
func (s Subscription) TrialDaysRemainingAt(now time.Time) int {
	if s.TrialEndsAt == nil {
		return 0
	}
	remaining := s.TrialEndsAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// TrialDaysRemaining returns whole days left in the trial as of now.
func (s Subscription) TrialDaysRemaining() int {
	return s.TrialDaysRemainingAt(time.Now().UTC())
}

// EffectiveTierAt derives the tier actually granted at the given instant:
// the top tier during an active trial, the bottom tier when the status is
// not usable, otherwise the stored tier (unknown tiers degrade to entry).
func (s Subscription) EffectiveTierAt(now time.Time) Tier {
	if s.IsTrialActiveAt(now) {
		return TierEnterprise
	}
	if !s.Status.IsUsable() {
		return TierEntry
	}
	if !s.Tier.Valid() {
		return TierEntry
	}
	return s.Tier
}

// EffectiveTier derives the tier actually granted as of now.
func (s Subscription) EffectiveTier() Tier {
	return s.EffectiveTierAt(time.Now().UTC())
}
