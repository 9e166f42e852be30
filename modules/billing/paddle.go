package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/google/uuid"

	"github.com/thefrankalbert/attabl/pkg/plan"
)

// PaddleConfig holds credentials for the Paddle billing provider.
// Checkout and portal sessions are created by the provider's hosted
// surfaces; this service only consumes the webhook stream.
type PaddleConfig struct {
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
}

// Paddle verifies inbound webhook signatures.
type Paddle struct {
	Verifier *paddle.WebhookVerifier
}

// NewPaddle creates the webhook verifier.
func NewPaddle(cfg PaddleConfig) (*Paddle, error) {
	if cfg.WebhookSecret == "" {
		return nil, errors.New("paddle webhook secret is required")
	}
	return &Paddle{Verifier: paddle.NewWebhookVerifier(cfg.WebhookSecret)}, nil
}

// webhookEvent is the subset of a Paddle subscription webhook the
// service acts on. The tenant id travels in custom_data, set when the
// checkout transaction is created.
type webhookEvent struct {
	eventType     string
	providerSubID string
	tenantID      uuid.UUID
	status        plan.Status
	priceID       string
	trialEndsAt   *time.Time
	periodEndsAt  *time.Time
}

// parseWebhook decodes a verified Paddle subscription event payload.
// Non-subscription events return ErrInvalidWebhook so callers can ack
// and ignore them.
func parseWebhook(payload []byte) (webhookEvent, error) {
	var raw struct {
		EventType string `json:"event_type"`
		Data      struct {
			ID         string `json:"id"`
			Status     string `json:"status"`
			CustomData struct {
				TenantID string `json:"tenant_id"`
			} `json:"custom_data"`
			Items []struct {
				Price struct {
					ID string `json:"id"`
				} `json:"price"`
			} `json:"items"`
			CurrentBillingPeriod *struct {
				EndsAt time.Time `json:"ends_at"`
			} `json:"current_billing_period"`
			TrialDates *struct {
				EndsAt time.Time `json:"ends_at"`
			} `json:"trial_dates"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return webhookEvent{}, errors.Join(ErrInvalidWebhook, err)
	}
	if !strings.HasPrefix(raw.EventType, "subscription.") {
		return webhookEvent{}, fmt.Errorf("%w: unsupported event type %q", ErrInvalidWebhook, raw.EventType)
	}

	tenantID, err := uuid.Parse(raw.Data.CustomData.TenantID)
	if err != nil {
		return webhookEvent{}, fmt.Errorf("%w: missing or invalid tenant_id in custom_data", ErrInvalidWebhook)
	}

	ev := webhookEvent{
		eventType:     raw.EventType,
		providerSubID: raw.Data.ID,
		tenantID:      tenantID,
		status:        plan.ParseStatus(raw.Data.Status),
	}
	if len(raw.Data.Items) > 0 {
		ev.priceID = raw.Data.Items[0].Price.ID
	}
	if raw.Data.TrialDates != nil {
		t := raw.Data.TrialDates.EndsAt
		ev.trialEndsAt = &t
	}
	if raw.Data.CurrentBillingPeriod != nil {
		t := raw.Data.CurrentBillingPeriod.EndsAt
		ev.periodEndsAt = &t
	}
	return ev, nil
}
