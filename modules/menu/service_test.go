package menu

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thefrankalbert/attabl/pkg/plan"
	"github.com/thefrankalbert/attabl/pkg/tenant"
)

type memStore struct {
	items map[uuid.UUID]Item
}

func newMemStore() *memStore {
	return &memStore{items: make(map[uuid.UUID]Item)}
}

func (m *memStore) CountByTenant(_ context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	for _, item := range m.items {
		if item.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListByVenue(_ context.Context, tenantID, venueID uuid.UUID) ([]Item, error) {
	var items []Item
	for _, item := range m.items {
		if item.TenantID == tenantID && item.VenueID == venueID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *memStore) Get(_ context.Context, tenantID, itemID uuid.UUID) (Item, error) {
	item, ok := m.items[itemID]
	if !ok || item.TenantID != tenantID {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (m *memStore) Create(_ context.Context, item Item) error {
	m.items[item.ID] = item
	return nil
}

func (m *memStore) Update(_ context.Context, item Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return ErrItemNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *memStore) Delete(_ context.Context, tenantID, itemID uuid.UUID) error {
	item, ok := m.items[itemID]
	if !ok || item.TenantID != tenantID {
		return ErrItemNotFound
	}
	delete(m.items, itemID)
	return nil
}

func tenantCtx(tier plan.Tier, status plan.Status) (context.Context, *tenant.Tenant) {
	tnt := &tenant.Tenant{
		ID:       uuid.New(),
		Slug:     "radisson",
		Name:     "Radisson",
		PlanTier: string(tier),
		Status:   string(status),
		Active:   true,
	}
	return tenant.WithTenant(context.Background(), tnt), tnt
}

func validParams(venueID uuid.UUID) CreateItemParams {
	return CreateItemParams{
		VenueID:    venueID,
		Name:       "Margherita",
		PriceCents: 1250,
		Currency:   "EUR",
		Category:   "pizza",
	}
}

func TestCreateItem(t *testing.T) {
	t.Parallel()

	t.Run("creates under the limit", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		svc := NewService(store, plan.DefaultCatalog(), "attabl.com", nil)
		ctx, tnt := tenantCtx(plan.TierEntry, plan.StatusActive)

		item, err := svc.CreateItem(ctx, validParams(uuid.New()))
		require.NoError(t, err)
		assert.Equal(t, tnt.ID, item.TenantID)
		assert.True(t, item.Available)
		assert.NotEqual(t, uuid.Nil, item.ID)
	})

	t.Run("rejects at the plan limit", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		svc := NewService(store, plan.DefaultCatalog(), "attabl.com", nil)
		ctx, tnt := tenantCtx(plan.TierEntry, plan.StatusActive)

		limit := plan.DefaultCatalog().Get(plan.TierEntry).LimitFor(plan.ResourceMenuItems)
		venueID := uuid.New()
		for range limit {
			_, err := svc.CreateItem(ctx, validParams(venueID))
			require.NoError(t, err)
		}

		_, err := svc.CreateItem(ctx, validParams(venueID))
		assert.ErrorIs(t, err, plan.ErrLimitReached)

		count, _ := store.CountByTenant(ctx, tnt.ID)
		assert.Equal(t, limit, count)
	})

	t.Run("trial gets enterprise limits", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		svc := NewService(store, plan.DefaultCatalog(), "attabl.com", nil)

		trialEnd := time.Now().UTC().Add(7 * 24 * time.Hour)
		tnt := &tenant.Tenant{
			ID:          uuid.New(),
			Slug:        "radisson",
			PlanTier:    string(plan.TierEntry),
			Status:      string(plan.StatusTrialing),
			TrialEndsAt: &trialEnd,
			Active:      true,
		}
		ctx := tenant.WithTenant(context.Background(), tnt)

		// Well past the entry limit; unlimited during trial.
		venueID := uuid.New()
		entryLimit := plan.DefaultCatalog().Get(plan.TierEntry).LimitFor(plan.ResourceMenuItems)
		for range entryLimit + 5 {
			_, err := svc.CreateItem(ctx, validParams(venueID))
			require.NoError(t, err)
		}
	})

	t.Run("rejects without tenant", func(t *testing.T) {
		t.Parallel()

		svc := NewService(newMemStore(), plan.DefaultCatalog(), "attabl.com", nil)
		_, err := svc.CreateItem(context.Background(), validParams(uuid.New()))
		assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
	})

	t.Run("rejects invalid params", func(t *testing.T) {
		t.Parallel()

		svc := NewService(newMemStore(), plan.DefaultCatalog(), "attabl.com", nil)
		ctx, _ := tenantCtx(plan.TierPremium, plan.StatusActive)

		params := validParams(uuid.New())
		params.Name = "  "
		_, err := svc.CreateItem(ctx, params)
		assert.ErrorIs(t, err, ErrInvalidItem)

		params = validParams(uuid.New())
		params.Currency = "EURO"
		_, err = svc.CreateItem(ctx, params)
		assert.ErrorIs(t, err, ErrInvalidItem)
	})
}

func TestUpdateItem(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := NewService(store, plan.DefaultCatalog(), "attabl.com", nil)
	ctx, _ := tenantCtx(plan.TierPremium, plan.StatusActive)

	item, err := svc.CreateItem(ctx, validParams(uuid.New()))
	require.NoError(t, err)

	params := validParams(item.VenueID)
	params.Name = "Margherita DOP"
	params.PriceCents = 1450

	updated, err := svc.UpdateItem(ctx, item.ID, params, false)
	require.NoError(t, err)
	assert.Equal(t, "Margherita DOP", updated.Name)
	assert.Equal(t, int64(1450), updated.PriceCents)
	assert.False(t, updated.Available)
}

func TestUpdateItemAvailabilityNeedsInventoryFeature(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := NewService(store, plan.DefaultCatalog(), "attabl.com", nil)
	ctx, _ := tenantCtx(plan.TierEntry, plan.StatusActive)

	item, err := svc.CreateItem(ctx, validParams(uuid.New()))
	require.NoError(t, err)

	// Entry has no inventory feature, so the stock toggle is rejected.
	_, err = svc.UpdateItem(ctx, item.ID, validParams(item.VenueID), false)
	assert.ErrorIs(t, err, plan.ErrFeatureNotAvailable)

	// Edits that keep availability unchanged stay allowed.
	params := validParams(item.VenueID)
	params.PriceCents = 1350
	updated, err := svc.UpdateItem(ctx, item.ID, params, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1350), updated.PriceCents)
}

func TestUpdateItemOtherTenantNotFound(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := NewService(store, plan.DefaultCatalog(), "attabl.com", nil)

	ownerCtx, _ := tenantCtx(plan.TierPremium, plan.StatusActive)
	item, err := svc.CreateItem(ownerCtx, validParams(uuid.New()))
	require.NoError(t, err)

	otherCtx, _ := tenantCtx(plan.TierPremium, plan.StatusActive)
	_, err = svc.UpdateItem(otherCtx, item.ID, validParams(item.VenueID), true)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestTableQR(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemStore(), plan.DefaultCatalog(), "attabl.com", nil)
	ctx, _ := tenantCtx(plan.TierEntry, plan.StatusActive)

	img, err := svc.TableQR(ctx, uuid.New(), "4", 128)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
}
