package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thefrankalbert/attabl/pkg/broadcast"
	"github.com/thefrankalbert/attabl/pkg/plan"
)

// Service applies subscription changes and notifies subscribers.
type Service struct {
	store      Store
	priceTiers map[string]plan.Tier
	events     *broadcast.Broadcaster[Event]
	log        *slog.Logger
	now        func() time.Time
}

// NewService wires the billing service. priceTiers maps Paddle price
// ids to plan tiers; events may be shared with other modules.
func NewService(store Store, priceTiers map[string]plan.Tier, events *broadcast.Broadcaster[Event], log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:      store,
		priceTiers: priceTiers,
		events:     events,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Events exposes the change stream for subscribers.
func (s *Service) Events() *broadcast.Broadcaster[Event] { return s.events }

// apply moves a tenant's subscription to the state carried by a
// verified webhook. Transitions outside the lifecycle table are
// rejected; same-status updates pass through so Paddle's retries stay
// idempotent.
func (s *Service) apply(ctx context.Context, ev webhookEvent) error {
	rec, err := s.store.GetByTenant(ctx, ev.tenantID)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		// A provider subscription stays bound to one tenant. A webhook
		// naming another tenant's subscription id is forged or
		// misconfigured custom_data.
		if existing, lookupErr := s.store.GetByProviderSubID(ctx, ev.providerSubID); lookupErr == nil && existing.TenantID != ev.tenantID {
			return fmt.Errorf("%w: subscription %s is bound to another tenant", ErrInvalidWebhook, ev.providerSubID)
		}
		rec = NewTrialRecord(ev.tenantID, 0, s.now())
		rec.TrialEndsAt = nil
		rec.Status = ev.status
	case err != nil:
		return err
	default:
		if !plan.CanTransition(rec.Status, ev.status) {
			return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, rec.Status, ev.status)
		}
	}

	fromStatus := rec.Status

	if ev.priceID != "" {
		tier, ok := s.priceTiers[ev.priceID]
		if !ok {
			// Unknown price keeps the stored tier; the webhook may
			// carry an add-on rather than a plan change.
			s.log.WarnContext(ctx, "unmapped paddle price id", "price_id", ev.priceID)
		} else {
			rec.Tier = tier
		}
	}

	rec.Status = ev.status
	rec.ProviderSubID = ev.providerSubID
	rec.TrialEndsAt = ev.trialEndsAt
	if ev.periodEndsAt != nil {
		rec.PeriodEndsAt = ev.periodEndsAt
	}
	rec.UpdatedAt = s.now()

	if err := s.store.Save(ctx, rec); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "subscription updated",
		"tenant_id", ev.tenantID,
		"from", fromStatus,
		"to", rec.Status,
		"tier", rec.Tier,
	)

	if s.events != nil {
		s.events.Publish(Event{
			TenantID:   ev.tenantID,
			FromStatus: fromStatus,
			ToStatus:   rec.Status,
			Tier:       rec.Tier,
		})
	}
	return nil
}
