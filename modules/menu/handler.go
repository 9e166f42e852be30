package menu

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thefrankalbert/attabl/pkg/plan"
	"github.com/thefrankalbert/attabl/pkg/tenant"
)

// Router mounts the menu HTTP surface. It expects to run behind the
// tenant middleware so every request carries a resolved tenant.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/venues/{venueID}", func(r chi.Router) {
		r.Get("/items", s.handleListItems)
		r.Post("/items", s.handleCreateItem)
		r.Get("/qr.png", s.handleTableQR)
	})
	r.Route("/items/{itemID}", func(r chi.Router) {
		r.Put("/", s.handleUpdateItem)
		r.Delete("/", s.handleDeleteItem)
	})
	return r
}

type itemPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Category    string `json:"category"`
	Available   bool   `json:"available"`
}

func (s *Service) handleListItems(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid venue id")
		return
	}

	items, err := s.ListItems(r.Context(), venueID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Service) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid venue id")
		return
	}

	var payload itemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.CreateItem(r.Context(), CreateItemParams{
		VenueID:     venueID,
		Name:        payload.Name,
		Description: payload.Description,
		PriceCents:  payload.PriceCents,
		Currency:    payload.Currency,
		Category:    payload.Category,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Service) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var payload itemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.UpdateItem(r.Context(), itemID, CreateItemParams{
		Name:        payload.Name,
		Description: payload.Description,
		PriceCents:  payload.PriceCents,
		Currency:    payload.Currency,
		Category:    payload.Category,
	}, payload.Available)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Service) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := s.DeleteItem(r.Context(), itemID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleTableQR(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid venue id")
		return
	}

	img, err := s.TableQR(r.Context(), venueID, r.URL.Query().Get("table"), 0)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (s *Service) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, plan.ErrLimitReached):
		writeError(w, http.StatusPaymentRequired, "plan limit reached, upgrade to add more items")
	case errors.Is(err, plan.ErrFeatureNotAvailable):
		writeError(w, http.StatusPaymentRequired, "feature not available on the current plan")
	case errors.Is(err, ErrInvalidItem):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrItemNotFound):
		writeError(w, http.StatusNotFound, "menu item not found")
	case errors.Is(err, tenant.ErrNoTenantInContext):
		writeError(w, http.StatusNotFound, "unknown tenant")
	default:
		s.log.ErrorContext(r.Context(), "menu request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
