package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vowline/internal/platform/postgres"
	"vowline/internal/tenant/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

// Postgres persists tenants. Pure I/O — status transition rules live on the
// model, orchestration in the service.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const tenantColumns = `id, name, status, primary_color, secondary_color, accent_color, logo_url, tagline, created_at, updated_at`

func (s *Postgres) CreateIfNameAvailable(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		tenant.ID.String(), tenant.Name, tenant.Status,
		tenant.Branding.PrimaryColor, tenant.Branding.SecondaryColor, tenant.Branding.AccentColor,
		tenant.Branding.LogoURL, tenant.Branding.Tagline,
		tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "tenants_name_lower_key") {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $2, status = $3, primary_color = $4, secondary_color = $5,
		    accent_color = $6, logo_url = $7, tagline = $8, updated_at = $9
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		tenant.ID.String(), tenant.Name, tenant.Status,
		tenant.Branding.PrimaryColor, tenant.Branding.SecondaryColor, tenant.Branding.AccentColor,
		tenant.Branding.LogoURL, tenant.Branding.Tagline,
		tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.TenantID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	tenant, err := scanTenant(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	return tenant, nil
}

// TenantSuspended reports whether the tenant is currently suspended. Unknown
// tenants count as suspended so orphaned principals cannot act.
func (s *Postgres) TenantSuspended(ctx context.Context, id domain.TenantID) (bool, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM tenants WHERE id = $1`, id.String(),
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("tenant suspended: %w", err)
	}
	return status != string(models.TenantStatusActive), nil
}

// TenantExists reports whether a tenant exists and has not been deactivated.
func (s *Postgres) TenantExists(ctx context.Context, id domain.TenantID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE id = $1 AND status <> 'inactive')`,
		id.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("tenant exists: %w", err)
	}
	return exists, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []*models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("list tenants: %w", err)
		}
		out = append(out, tenant)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (*models.Tenant, error) {
	var (
		tenant models.Tenant
		rawID  string
	)
	err := row.Scan(
		&rawID, &tenant.Name, &tenant.Status,
		&tenant.Branding.PrimaryColor, &tenant.Branding.SecondaryColor, &tenant.Branding.AccentColor,
		&tenant.Branding.LogoURL, &tenant.Branding.Tagline,
		&tenant.CreatedAt, &tenant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	id, err := domain.ParseTenantID(rawID)
	if err != nil {
		return nil, err
	}
	tenant.ID = id
	return &tenant, nil
}
