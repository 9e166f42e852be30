package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thefrankalbert/attabl/pkg/plan"
	"github.com/thefrankalbert/attabl/pkg/qr"
	"github.com/thefrankalbert/attabl/pkg/tenant"
)

// Service implements menu operations for the tenant in the request
// context. Writes are gated by the tenant's plan limit for menu items.
type Service struct {
	store   Store
	catalog *plan.Catalog
	domain  string
	log     *slog.Logger
	now     func() time.Time
}

// NewService wires the menu service. domain is the platform root
// domain used to build QR deep links, e.g. "attabl.com".
func NewService(store Store, catalog *plan.Catalog, domain string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:   store,
		catalog: catalog,
		domain:  domain,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateItem adds a menu item after checking the tenant's plan limit.
// The count includes all venues: limits are per tenant, not per venue.
func (s *Service) CreateItem(ctx context.Context, params CreateItemParams) (Item, error) {
	tnt, ok := tenant.FromContext(ctx)
	if !ok {
		return Item{}, tenant.ErrNoTenantInContext
	}
	if err := validateItemParams(params); err != nil {
		return Item{}, err
	}

	count, err := s.store.CountByTenant(ctx, tnt.ID)
	if err != nil {
		return Item{}, err
	}
	if s.catalog.IsLimitReached(tnt.Subscription(), plan.ResourceMenuItems, count) {
		return Item{}, fmt.Errorf("%w: menu items", plan.ErrLimitReached)
	}

	now := s.now()
	item := Item{
		ID:          uuid.New(),
		TenantID:    tnt.ID,
		VenueID:     params.VenueID,
		Name:        strings.TrimSpace(params.Name),
		Description: strings.TrimSpace(params.Description),
		PriceCents:  params.PriceCents,
		Currency:    params.Currency,
		Category:    params.Category,
		Available:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// UpdateItem replaces the mutable fields of an existing item.
func (s *Service) UpdateItem(ctx context.Context, itemID uuid.UUID, params CreateItemParams, available bool) (Item, error) {
	tnt, ok := tenant.FromContext(ctx)
	if !ok {
		return Item{}, tenant.ErrNoTenantInContext
	}

	item, err := s.store.Get(ctx, tnt.ID, itemID)
	if err != nil {
		return Item{}, err
	}
	params.VenueID = item.VenueID
	if err := validateItemParams(params); err != nil {
		return Item{}, err
	}

	// Toggling availability is stock tracking, gated by the inventory
	// feature.
	if available != item.Available {
		if err := s.catalog.RequireFeature(tnt.Subscription(), plan.FeatureInventory); err != nil {
			return Item{}, err
		}
	}
	item.Name = strings.TrimSpace(params.Name)
	item.Description = strings.TrimSpace(params.Description)
	item.PriceCents = params.PriceCents
	item.Currency = params.Currency
	item.Category = params.Category
	item.Available = available
	item.UpdatedAt = s.now()

	if err := s.store.Update(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// ListItems returns the venue's menu for the context tenant.
func (s *Service) ListItems(ctx context.Context, venueID uuid.UUID) ([]Item, error) {
	tnt, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}
	return s.store.ListByVenue(ctx, tnt.ID, venueID)
}

// DeleteItem removes an item from the context tenant's menu.
func (s *Service) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	tnt, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrNoTenantInContext
	}
	return s.store.Delete(ctx, tnt.ID, itemID)
}

// TableQR renders a QR code PNG deep-linking a table to the venue menu
// on the tenant's subdomain.
func (s *Service) TableQR(ctx context.Context, venueID uuid.UUID, table string, size int) ([]byte, error) {
	tnt, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}

	link := fmt.Sprintf("https://%s.%s/menu?venue=%s", tnt.Slug, s.domain, venueID)
	if table != "" {
		link += "&table=" + table
	}
	return qr.PNG(link, size)
}

func validateItemParams(params CreateItemParams) error {
	switch {
	case params.VenueID == uuid.Nil:
		return errors.Join(ErrInvalidItem, errors.New("venue id is required"))
	case strings.TrimSpace(params.Name) == "":
		return errors.Join(ErrInvalidItem, errors.New("name is required"))
	case params.PriceCents < 0:
		return errors.Join(ErrInvalidItem, errors.New("price cannot be negative"))
	case len(params.Currency) != 3:
		return errors.Join(ErrInvalidItem, errors.New("currency must be an ISO 4217 code"))
	}
	return nil
}
