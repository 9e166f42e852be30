package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thefrankalbert/attabl/pkg/pg"
	"github.com/thefrankalbert/attabl/pkg/tenant"
)

// Store persists tenants, admins, and invitations.
type Store interface {
	CreateTenant(ctx context.Context, tnt tenant.Tenant) error
	DeleteTenant(ctx context.Context, id uuid.UUID) error
	GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)

	CountAdmins(ctx context.Context, tenantID uuid.UUID) (int64, error)
	AdminExists(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)
	CreateAdmin(ctx context.Context, admin Admin) error

	CreateInvitation(ctx context.Context, inv Invitation) error
	GetInvitationByToken(ctx context.Context, token string) (Invitation, error)
	MarkInvitationAccepted(ctx context.Context, id uuid.UUID, at time.Time) error
}

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a Postgres-backed onboarding store. It also
// serves as the tenant.Provider for request routing: GetBySlug joins
// the live subscription so plan enforcement sees current state.
func NewPgStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) CreateTenant(ctx context.Context, tnt tenant.Tenant) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tenants (id, slug, name, logo_url, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tnt.ID, tnt.Slug, tnt.Name, tnt.LogoURL, tnt.Active, tnt.CreatedAt)
	if pg.IsDuplicateKey(err) {
		return errors.Join(ErrSlugTaken, err)
	}
	return err
}

func (s *pgStore) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	return err
}

func (s *pgStore) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return s.getTenant(ctx, `t.slug = $1`, slug)
}

func (s *pgStore) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.getTenant(ctx, `t.id = $1`, id)
}

func (s *pgStore) getTenant(ctx context.Context, where string, arg any) (*tenant.Tenant, error) {
	var tnt tenant.Tenant
	err := s.pool.QueryRow(ctx, `
		SELECT t.id, t.slug, t.name, t.logo_url, t.active, t.created_at,
		       COALESCE(s.tier, 'entry'), COALESCE(s.status, 'trialing'), s.trial_ends_at
		FROM tenants t
		LEFT JOIN subscriptions s ON s.tenant_id = t.id
		WHERE `+where, arg).
		Scan(&tnt.ID, &tnt.Slug, &tnt.Name, &tnt.LogoURL, &tnt.Active,
			&tnt.CreatedAt, &tnt.PlanTier, &tnt.Status, &tnt.TrialEndsAt)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, errors.Join(tenant.ErrTenantNotFound, err)
		}
		return nil, err
	}
	return &tnt, nil
}

func (s *pgStore) CountAdmins(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM admins WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

func (s *pgStore) AdminExists(ctx context.Context, tenantID uuid.UUID, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM admins WHERE tenant_id = $1 AND email = $2)`,
		tenantID, email).Scan(&exists)
	return exists, err
}

func (s *pgStore) CreateAdmin(ctx context.Context, admin Admin) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admins (id, tenant_id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		admin.ID, admin.TenantID, admin.Email, admin.Name, admin.PasswordHash, admin.CreatedAt)
	if pg.IsDuplicateKey(err) {
		return errors.Join(ErrAdminAlreadyExists, err)
	}
	return err
}

func (s *pgStore) CreateInvitation(ctx context.Context, inv Invitation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO invitations (id, tenant_id, email, token, expires_at, accepted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inv.ID, inv.TenantID, inv.Email, inv.Token, inv.ExpiresAt, inv.AcceptedAt, inv.CreatedAt)
	return err
}

func (s *pgStore) GetInvitationByToken(ctx context.Context, token string) (Invitation, error) {
	var inv Invitation
	err := s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, email, token, expires_at, accepted_at, created_at
		FROM invitations WHERE token = $1`, token).
		Scan(&inv.ID, &inv.TenantID, &inv.Email, &inv.Token, &inv.ExpiresAt,
			&inv.AcceptedAt, &inv.CreatedAt)
	if err != nil {
		if pg.IsNotFound(err) {
			return Invitation{}, errors.Join(ErrInviteNotFound, err)
		}
		return Invitation{}, err
	}
	return inv, nil
}

func (s *pgStore) MarkInvitationAccepted(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE invitations SET accepted_at = $2 WHERE id = $1 AND accepted_at IS NULL`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInviteAlreadyUsed
	}
	return nil
}
