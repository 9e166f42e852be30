package menu

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thefrankalbert/attabl/pkg/pg"
)

// Store persists menu items scoped by tenant.
type Store interface {
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	ListByVenue(ctx context.Context, tenantID, venueID uuid.UUID) ([]Item, error)
	Get(ctx context.Context, tenantID, itemID uuid.UUID) (Item, error)
	Create(ctx context.Context, item Item) error
	Update(ctx context.Context, item Item) error
	Delete(ctx context.Context, tenantID, itemID uuid.UUID) error
}

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a Postgres-backed menu item store.
func NewPgStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

const itemColumns = `id, tenant_id, venue_id, name, description, price_cents, currency, category, available, created_at, updated_at`

func (s *pgStore) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM menu_items WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

func (s *pgStore) ListByVenue(ctx context.Context, tenantID, venueID uuid.UUID) ([]Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM menu_items
		 WHERE tenant_id = $1 AND venue_id = $2
		 ORDER BY category, name`, tenantID, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *pgStore) Get(ctx context.Context, tenantID, itemID uuid.UUID) (Item, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM menu_items WHERE tenant_id = $1 AND id = $2`,
		tenantID, itemID)
	item, err := scanItem(row)
	if pg.IsNotFound(err) {
		return Item{}, errors.Join(ErrItemNotFound, err)
	}
	return item, err
}

func (s *pgStore) Create(ctx context.Context, item Item) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO menu_items (id, tenant_id, venue_id, name, description, price_cents, currency, category, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID, item.TenantID, item.VenueID, item.Name, item.Description,
		item.PriceCents, item.Currency, item.Category, item.Available,
		item.CreatedAt, item.UpdatedAt)
	return err
}

func (s *pgStore) Update(ctx context.Context, item Item) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE menu_items SET
			name = $3, description = $4, price_cents = $5, currency = $6,
			category = $7, available = $8, updated_at = $9
		WHERE tenant_id = $1 AND id = $2`,
		item.TenantID, item.ID, item.Name, item.Description, item.PriceCents,
		item.Currency, item.Category, item.Available, item.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *pgStore) Delete(ctx context.Context, tenantID, itemID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM menu_items WHERE tenant_id = $1 AND id = $2`, tenantID, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.TenantID, &item.VenueID, &item.Name,
		&item.Description, &item.PriceCents, &item.Currency, &item.Category,
		&item.Available, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}
