package onboarding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/thefrankalbert/attabl/modules/billing"
	"github.com/thefrankalbert/attabl/pkg/email"
	"github.com/thefrankalbert/attabl/pkg/plan"
	"github.com/thefrankalbert/attabl/pkg/tenant"
)

type memStore struct {
	tenants map[string]tenant.Tenant
	admins  map[uuid.UUID][]Admin
	invites map[string]Invitation
}

func newMemStore() *memStore {
	return &memStore{
		tenants: make(map[string]tenant.Tenant),
		admins:  make(map[uuid.UUID][]Admin),
		invites: make(map[string]Invitation),
	}
}

func (m *memStore) CreateTenant(_ context.Context, tnt tenant.Tenant) error {
	if _, ok := m.tenants[tnt.Slug]; ok {
		return ErrSlugTaken
	}
	m.tenants[tnt.Slug] = tnt
	return nil
}

func (m *memStore) DeleteTenant(_ context.Context, id uuid.UUID) error {
	for slug, tnt := range m.tenants {
		if tnt.ID == id {
			delete(m.tenants, slug)
			return nil
		}
	}
	return nil
}

func (m *memStore) GetBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	tnt, ok := m.tenants[slug]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return &tnt, nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	for _, tnt := range m.tenants {
		if tnt.ID == id {
			return &tnt, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *memStore) CountAdmins(_ context.Context, tenantID uuid.UUID) (int64, error) {
	return int64(len(m.admins[tenantID])), nil
}

func (m *memStore) AdminExists(_ context.Context, tenantID uuid.UUID, email string) (bool, error) {
	for _, a := range m.admins[tenantID] {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateAdmin(_ context.Context, admin Admin) error {
	for _, a := range m.admins[admin.TenantID] {
		if a.Email == admin.Email {
			return ErrAdminAlreadyExists
		}
	}
	m.admins[admin.TenantID] = append(m.admins[admin.TenantID], admin)
	return nil
}

func (m *memStore) CreateInvitation(_ context.Context, inv Invitation) error {
	m.invites[inv.Token] = inv
	return nil
}

func (m *memStore) GetInvitationByToken(_ context.Context, token string) (Invitation, error) {
	inv, ok := m.invites[token]
	if !ok {
		return Invitation{}, ErrInviteNotFound
	}
	return inv, nil
}

func (m *memStore) MarkInvitationAccepted(_ context.Context, id uuid.UUID, at time.Time) error {
	for token, inv := range m.invites {
		if inv.ID == id {
			if inv.AcceptedAt != nil {
				return ErrInviteAlreadyUsed
			}
			inv.AcceptedAt = &at
			m.invites[token] = inv
			return nil
		}
	}
	return ErrInviteNotFound
}

type memSubs struct {
	records map[uuid.UUID]billing.Record
	saveErr error
}

func (m *memSubs) GetByTenant(_ context.Context, tenantID uuid.UUID) (billing.Record, error) {
	rec, ok := m.records[tenantID]
	if !ok {
		return billing.Record{}, billing.ErrRecordNotFound
	}
	return rec, nil
}

func (m *memSubs) GetByProviderSubID(_ context.Context, _ string) (billing.Record, error) {
	return billing.Record{}, billing.ErrRecordNotFound
}

func (m *memSubs) Save(_ context.Context, rec billing.Record) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[rec.TenantID] = rec
	return nil
}

type memSender struct {
	sent []email.Message
}

func (m *memSender) Send(_ context.Context, msg email.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func newTestService() (*Service, *memStore, *memSubs, *memSender) {
	store := newMemStore()
	subs := &memSubs{records: make(map[uuid.UUID]billing.Record)}
	sender := &memSender{}
	svc := NewService(store, subs, plan.DefaultCatalog(), sender, "attabl.com", nil)
	return svc, store, subs, sender
}

func TestCreateTenant(t *testing.T) {
	t.Parallel()

	t.Run("provisions trialing tenant with owner invite", func(t *testing.T) {
		t.Parallel()

		svc, store, subs, sender := newTestService()

		tnt, err := svc.CreateTenant(context.Background(), "Café Zürich", "owner@example.com")
		require.NoError(t, err)
		assert.Equal(t, "cafe-zurich", tnt.Slug)
		assert.Equal(t, string(plan.StatusTrialing), tnt.Status)
		assert.Equal(t, string(plan.TierEntry), tnt.PlanTier)
		require.NotNil(t, tnt.TrialEndsAt)
		assert.True(t, tnt.TrialEndsAt.After(time.Now().UTC().AddDate(0, 0, DefaultTrialDays-1)))

		rec, err := subs.GetByTenant(context.Background(), tnt.ID)
		require.NoError(t, err)
		assert.Equal(t, plan.StatusTrialing, rec.Status)
		assert.Equal(t, plan.TierEntry, rec.Tier)

		_, ok := store.tenants["cafe-zurich"]
		assert.True(t, ok)

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "owner@example.com", sender.sent[0].To)
		assert.Contains(t, sender.sent[0].BodyHTML, "https://attabl.com/invites/accept?token=")
	})

	t.Run("slug collision gets a suffix", func(t *testing.T) {
		t.Parallel()

		svc, _, _, _ := newTestService()

		first, err := svc.CreateTenant(context.Background(), "Radisson", "a@example.com")
		require.NoError(t, err)

		second, err := svc.CreateTenant(context.Background(), "Radisson", "b@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, first.Slug, second.Slug)
		assert.True(t, strings.HasPrefix(second.Slug, "radisson-"))
	})

	t.Run("unusable name rejected", func(t *testing.T) {
		t.Parallel()

		svc, _, _, _ := newTestService()
		_, err := svc.CreateTenant(context.Background(), "!!!", "a@example.com")
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("rolls back tenant when subscription write fails", func(t *testing.T) {
		t.Parallel()

		svc, store, subs, sender := newTestService()
		subs.saveErr = errors.New("connection reset")

		_, err := svc.CreateTenant(context.Background(), "Radisson", "owner@example.com")
		require.Error(t, err)

		// No half-provisioned tenant that routing could serve.
		assert.Empty(t, store.tenants)
		assert.Empty(t, sender.sent)
	})
}

func TestInviteAdmin(t *testing.T) {
	t.Parallel()

	t.Run("enforces admins limit", func(t *testing.T) {
		t.Parallel()

		svc, store, _, _ := newTestService()

		tnt := &tenant.Tenant{
			ID:       uuid.New(),
			Slug:     "radisson",
			Name:     "Radisson",
			PlanTier: string(plan.TierEntry),
			Status:   string(plan.StatusActive),
			Active:   true,
		}
		ctx := tenant.WithTenant(context.Background(), tnt)

		limit := plan.DefaultCatalog().Get(plan.TierEntry).LimitFor(plan.ResourceAdmins)
		for i := range limit {
			store.admins[tnt.ID] = append(store.admins[tnt.ID], Admin{
				ID: uuid.New(), TenantID: tnt.ID, Email: strings.Repeat("x", int(i)+1) + "@example.com",
			})
		}

		_, err := svc.InviteAdmin(ctx, "one-too-many@example.com")
		assert.ErrorIs(t, err, plan.ErrLimitReached)
	})

	t.Run("rejects existing admin email", func(t *testing.T) {
		t.Parallel()

		svc, store, _, sender := newTestService()

		tnt := &tenant.Tenant{
			ID:       uuid.New(),
			Slug:     "radisson",
			Name:     "Radisson",
			PlanTier: string(plan.TierPremium),
			Status:   string(plan.StatusActive),
			Active:   true,
		}
		ctx := tenant.WithTenant(context.Background(), tnt)
		store.admins[tnt.ID] = append(store.admins[tnt.ID], Admin{
			ID: uuid.New(), TenantID: tnt.ID, Email: "chef@example.com",
		})

		_, err := svc.InviteAdmin(ctx, " Chef@Example.com ")
		assert.ErrorIs(t, err, ErrAdminAlreadyExists)
		assert.Empty(t, sender.sent)
	})

	t.Run("requires tenant context", func(t *testing.T) {
		t.Parallel()

		svc, _, _, _ := newTestService()
		_, err := svc.InviteAdmin(context.Background(), "a@example.com")
		assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
	})
}

func TestAcceptInvite(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*Service, *memStore, Invitation) {
		t.Helper()
		svc, store, _, _ := newTestService()
		inv := Invitation{
			ID:        uuid.New(),
			TenantID:  uuid.New(),
			Email:     "chef@example.com",
			Token:     "tok123",
			ExpiresAt: time.Now().UTC().Add(time.Hour),
			CreatedAt: time.Now().UTC(),
		}
		store.invites[inv.Token] = inv
		return svc, store, inv
	}

	t.Run("creates admin with hashed password", func(t *testing.T) {
		t.Parallel()

		svc, store, inv := setup(t)

		admin, err := svc.AcceptInvite(context.Background(), inv.Token, "Chef", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, inv.TenantID, admin.TenantID)
		assert.Equal(t, "chef@example.com", admin.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte("s3cret-pass")))

		assert.NotNil(t, store.invites[inv.Token].AcceptedAt)
	})

	t.Run("rejects expired invite", func(t *testing.T) {
		t.Parallel()

		svc, store, inv := setup(t)
		inv.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		store.invites[inv.Token] = inv

		_, err := svc.AcceptInvite(context.Background(), inv.Token, "Chef", "s3cret-pass")
		assert.ErrorIs(t, err, ErrInviteExpired)
	})

	t.Run("rejects reused invite", func(t *testing.T) {
		t.Parallel()

		svc, _, inv := setup(t)

		_, err := svc.AcceptInvite(context.Background(), inv.Token, "Chef", "s3cret-pass")
		require.NoError(t, err)

		_, err = svc.AcceptInvite(context.Background(), inv.Token, "Chef", "s3cret-pass")
		assert.ErrorIs(t, err, ErrInviteAlreadyUsed)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		t.Parallel()

		svc, _, inv := setup(t)
		_, err := svc.AcceptInvite(context.Background(), inv.Token, "Chef", "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := setup(t)
		_, err := svc.AcceptInvite(context.Background(), "nope", "Chef", "s3cret-pass")
		assert.ErrorIs(t, err, ErrInviteNotFound)
	})
}
