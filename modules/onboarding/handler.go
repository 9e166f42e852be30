package onboarding

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thefrankalbert/attabl/pkg/plan"
	"github.com/thefrankalbert/attabl/pkg/tenant"
)

// PublicRoutes registers the anonymous onboarding endpoints on the
// platform router. Signup and invite acceptance happen before the
// caller has a session, so these paths must stay outside the
// login-protected prefixes.
func (s *Service) PublicRoutes(r chi.Router) {
	r.Post("/signup", s.handleSignup)
	r.Post("/invites/accept", s.handleAccept)
}

// TenantRoutes registers the endpoints that require a tenant in the
// request context; mount them inside the rewritten sites tree.
func (s *Service) TenantRoutes(r chi.Router) {
	r.Post("/invites", s.handleInvite)
}

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name       string `json:"name"`
		OwnerEmail string `json:"owner_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tnt, err := s.CreateTenant(r.Context(), payload.Name, payload.OwnerEmail)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":   tnt.ID,
		"slug": tnt.Slug,
		"name": tnt.Name,
	})
}

func (s *Service) handleInvite(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := s.InviteAdmin(r.Context(), payload.Email)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         inv.ID,
		"email":      inv.Email,
		"expires_at": inv.ExpiresAt,
	})
}

func (s *Service) handleAccept(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token    string `json:"token"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The emailed link carries the token in the query string.
	if payload.Token == "" {
		payload.Token = r.URL.Query().Get("token")
	}

	admin, err := s.AcceptInvite(r.Context(), payload.Token, payload.Name, payload.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    admin.ID,
		"email": admin.Email,
	})
}

func (s *Service) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, plan.ErrLimitReached):
		writeError(w, http.StatusPaymentRequired, "plan limit reached, upgrade to invite more admins")
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrWeakPassword):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrSlugTaken), errors.Is(err, ErrAdminAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInviteNotFound), errors.Is(err, ErrInviteExpired), errors.Is(err, ErrInviteAlreadyUsed):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, tenant.ErrNoTenantInContext):
		writeError(w, http.StatusNotFound, "unknown tenant")
	default:
		s.log.ErrorContext(r.Context(), "onboarding request failed", "error", err)
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
