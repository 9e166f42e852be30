package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thefrankalbert/attabl/pkg/pg"
	"github.com/thefrankalbert/attabl/pkg/plan"
)

// Store persists subscription records.
type Store interface {
	GetByTenant(ctx context.Context, tenantID uuid.UUID) (Record, error)
	GetByProviderSubID(ctx context.Context, providerSubID string) (Record, error)
	Save(ctx context.Context, rec Record) error
}

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a Postgres-backed subscription store.
func NewPgStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

const recordColumns = `id, tenant_id, tier, status, provider_sub_id, trial_ends_at, period_ends_at, created_at, updated_at`

func (s *pgStore) GetByTenant(ctx context.Context, tenantID uuid.UUID) (Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM subscriptions WHERE tenant_id = $1`, tenantID)
	return scanRecord(row)
}

func (s *pgStore) GetByProviderSubID(ctx context.Context, providerSubID string) (Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM subscriptions WHERE provider_sub_id = $1`, providerSubID)
	return scanRecord(row)
}

func (s *pgStore) Save(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscriptions (id, tenant_id, tier, status, provider_sub_id, trial_ends_at, period_ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			status = EXCLUDED.status,
			provider_sub_id = EXCLUDED.provider_sub_id,
			trial_ends_at = EXCLUDED.trial_ends_at,
			period_ends_at = EXCLUDED.period_ends_at,
			updated_at = EXCLUDED.updated_at`,
		rec.ID, rec.TenantID, string(rec.Tier), string(rec.Status),
		rec.ProviderSubID, rec.TrialEndsAt, rec.PeriodEndsAt, rec.CreatedAt, rec.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec          Record
		tier, status string
	)
	err := row.Scan(&rec.ID, &rec.TenantID, &tier, &status, &rec.ProviderSubID,
		&rec.TrialEndsAt, &rec.PeriodEndsAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if pg.IsNotFound(err) {
			return Record{}, errors.Join(ErrRecordNotFound, err)
		}
		return Record{}, err
	}
	rec.Tier = plan.ParseTier(tier)
	rec.Status = plan.ParseStatus(status)
	return rec, nil
}

// NewTrialRecord builds the record given to every freshly onboarded
// tenant: entry tier, trialing, trial ends after trialDays.
func NewTrialRecord(tenantID uuid.UUID, trialDays int, now time.Time) Record {
	trialEnd := now.AddDate(0, 0, trialDays)
	return Record{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Tier:        plan.TierEntry,
		Status:      plan.StatusTrialing,
		TrialEndsAt: &trialEnd,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
