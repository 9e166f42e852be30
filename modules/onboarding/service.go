package onboarding

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/thefrankalbert/attabl/modules/billing"
	"github.com/thefrankalbert/attabl/pkg/email"
	"github.com/thefrankalbert/attabl/pkg/plan"
	"github.com/thefrankalbert/attabl/pkg/slug"
	"github.com/thefrankalbert/attabl/pkg/tenant"
)

// Service provisions tenants and manages admin access.
type Service struct {
	store   Store
	subs    billing.Store
	catalog *plan.Catalog
	sender  email.Sender
	domain  string
	log     *slog.Logger
	now     func() time.Time
}

// NewService wires the onboarding service. domain is the platform
// root domain used in invitation links.
func NewService(store Store, subs billing.Store, catalog *plan.Catalog, sender email.Sender, domain string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:   store,
		subs:    subs,
		catalog: catalog,
		sender:  sender,
		domain:  domain,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateTenant provisions a restaurant: a tenant row keyed by a slug
// derived from the name, a trialing entry subscription, and an owner
// invitation sent to ownerEmail. On a slug collision a random suffix
// is appended rather than failing signup.
func (s *Service) CreateTenant(ctx context.Context, name, ownerEmail string) (*tenant.Tenant, error) {
	tenantSlug := slug.Make(name)
	if tenantSlug == "" || !tenant.IsValidSlug(tenantSlug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	now := s.now()
	trialEnd := now.AddDate(0, 0, DefaultTrialDays)
	tnt := tenant.Tenant{
		ID:          uuid.New(),
		Slug:        tenantSlug,
		Name:        strings.TrimSpace(name),
		PlanTier:    string(plan.TierEntry),
		Status:      string(plan.StatusTrialing),
		TrialEndsAt: &trialEnd,
		Active:      true,
		CreatedAt:   now,
	}

	err := s.store.CreateTenant(ctx, tnt)
	if errors.Is(err, ErrSlugTaken) {
		tnt.Slug = slug.MakeUnique(name)
		err = s.store.CreateTenant(ctx, tnt)
	}
	if err != nil {
		return nil, err
	}

	if err := s.subs.Save(ctx, billing.NewTrialRecord(tnt.ID, DefaultTrialDays, now)); err != nil {
		// Roll the tenant back rather than leave a row routing would
		// serve on subscription defaults.
		if delErr := s.store.DeleteTenant(ctx, tnt.ID); delErr != nil {
			s.log.ErrorContext(ctx, "failed to roll back tenant after subscription write failure",
				"tenant_id", tnt.ID, "error", delErr)
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant created", "tenant_id", tnt.ID, "slug", tnt.Slug)

	if err := s.invite(ctx, &tnt, ownerEmail); err != nil {
		// The tenant exists; the owner can be re-invited.
		s.log.ErrorContext(ctx, "failed to invite owner", "tenant_id", tnt.ID, "error", err)
	}
	return &tnt, nil
}

// InviteAdmin invites another admin for the tenant in the request
// context, subject to the plan's admins limit.
func (s *Service) InviteAdmin(ctx context.Context, inviteeEmail string) (*Invitation, error) {
	tnt, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}

	count, err := s.store.CountAdmins(ctx, tnt.ID)
	if err != nil {
		return nil, err
	}
	if s.catalog.IsLimitReached(tnt.Subscription(), plan.ResourceAdmins, count) {
		return nil, fmt.Errorf("%w: admins", plan.ErrLimitReached)
	}

	normalized := strings.ToLower(strings.TrimSpace(inviteeEmail))
	exists, err := s.store.AdminExists(ctx, tnt.ID, normalized)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrAdminAlreadyExists, normalized)
	}

	inv, err := s.createInvitation(ctx, tnt.ID, inviteeEmail)
	if err != nil {
		return nil, err
	}
	if err := s.sendInviteEmail(ctx, tnt, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// AcceptInvite exchanges a valid invitation token for an admin
// account with a bcrypt-hashed password.
func (s *Service) AcceptInvite(ctx context.Context, token, name, password string) (*Admin, error) {
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	inv, err := s.store.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.AcceptedAt != nil {
		return nil, ErrInviteAlreadyUsed
	}
	if inv.Expired(s.now()) {
		return nil, ErrInviteExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := Admin{
		ID:           uuid.New(),
		TenantID:     inv.TenantID,
		Email:        inv.Email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	if err := s.store.MarkInvitationAccepted(ctx, inv.ID, s.now()); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "invitation accepted", "tenant_id", inv.TenantID, "admin_id", admin.ID)
	return &admin, nil
}

func (s *Service) invite(ctx context.Context, tnt *tenant.Tenant, inviteeEmail string) error {
	inv, err := s.createInvitation(ctx, tnt.ID, inviteeEmail)
	if err != nil {
		return err
	}
	return s.sendInviteEmail(ctx, tnt, inv)
}

func (s *Service) createInvitation(ctx context.Context, tenantID uuid.UUID, inviteeEmail string) (*Invitation, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, errors.Join(ErrFailedToCreateToken, err)
	}

	inv := Invitation{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Email:     strings.ToLower(strings.TrimSpace(inviteeEmail)),
		Token:     base64.RawURLEncoding.EncodeToString(buf),
		ExpiresAt: s.now().Add(inviteTTL),
		CreatedAt: s.now(),
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Service) sendInviteEmail(ctx context.Context, tnt *tenant.Tenant, inv *Invitation) error {
	// The link targets the platform domain: invitees have no session,
	// so the path must stay off the protected prefixes, and tenant
	// subdomains rewrite into the sites tree where this route does not
	// exist.
	link := fmt.Sprintf("https://%s/invites/accept?token=%s", s.domain, inv.Token)
	return s.sender.Send(ctx, email.Message{
		To:      inv.Email,
		Subject: fmt.Sprintf("You have been invited to manage %s", tnt.Name),
		BodyHTML: fmt.Sprintf(
			`<p>You have been invited to manage <strong>%s</strong> on Attabl.</p><p><a href="%s">Accept the invitation</a> (valid for 7 days).</p>`,
			tnt.Name, link),
		Tag: "admin-invite",
	})
}
