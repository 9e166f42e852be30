package billing

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router mounts the billing HTTP surface. The webhook endpoint is the
// only unauthenticated route; its requests are authenticated by the
// Paddle signature instead.
func (s *Service) Router(p *Paddle) http.Handler {
	r := chi.NewRouter()
	r.Post("/webhooks/paddle", s.handlePaddleWebhook(p))
	return r
}

func (s *Service) handlePaddleWebhook(p *Paddle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ok, err := p.Verifier.Verify(r)
		if err != nil || !ok {
			s.log.WarnContext(ctx, "rejected paddle webhook", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		ev, err := parseWebhook(payload)
		if err != nil {
			// Event types we do not handle are acked so Paddle stops
			// retrying them.
			if errors.Is(err, ErrInvalidWebhook) {
				s.log.InfoContext(ctx, "ignored paddle webhook", "error", err)
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := s.apply(ctx, ev); err != nil {
			if errors.Is(err, ErrTransitionNotAllowed) {
				// Out-of-order delivery. Ack it; the terminal state
				// already won.
				s.log.WarnContext(ctx, "skipped out-of-order subscription event",
					"tenant_id", ev.tenantID, "error", err)
				w.WriteHeader(http.StatusOK)
				return
			}
			if errors.Is(err, ErrInvalidWebhook) {
				// Retrying will not make the event valid.
				s.log.WarnContext(ctx, "rejected subscription event",
					"tenant_id", ev.tenantID, "error", err)
				w.WriteHeader(http.StatusOK)
				return
			}
			s.log.ErrorContext(ctx, "failed to apply subscription event", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
