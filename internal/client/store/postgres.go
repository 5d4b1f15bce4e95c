package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vowline/internal/access"
	"vowline/internal/client/models"
	"vowline/internal/platform/postgres"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

const profileColumns = `id, tenant_id, partner_one, partner_two, wedding_date, venue,
	status, website_settings, website_enabled, created_at, updated_at`

// Postgres persists client profiles and tenant access grants.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateProfile(ctx context.Context, p *models.ClientProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.TenantID, p.PartnerOne, p.PartnerTwo, p.WeddingDate, p.Venue,
		p.Status, []byte(p.WebsiteSettings), p.WebsiteEnabled, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert client profile: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateProfile(ctx context.Context, p *models.ClientProfile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE client_profiles
		SET partner_one = $2, partner_two = $3, wedding_date = $4, venue = $5,
			status = $6, website_settings = $7, website_enabled = $8, updated_at = $9
		WHERE id = $1`,
		p.ID, p.PartnerOne, p.PartnerTwo, p.WeddingDate, p.Venue,
		p.Status, []byte(p.WebsiteSettings), p.WebsiteEnabled, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update client profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client profile: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindProfileByID(ctx context.Context, id domain.ClientProfileID) (*models.ClientProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM client_profiles WHERE id = $1`, id)
	return scanProfile(row)
}

// ListProfiles applies the caller's scope in SQL: owned rows for scoped
// tenants, plus rows shared with them via tenant_access.
func (s *Postgres) ListProfiles(ctx context.Context, scope access.Scope) ([]*models.ClientProfile, error) {
	if scope.IsEmpty() {
		return nil, nil
	}

	query := `SELECT ` + profileColumns + ` FROM client_profiles p`
	var args []any
	if !scope.All {
		tenantIDs := make([]string, 0, len(scope.TenantIDs))
		for _, id := range scope.TenantIDs {
			tenantIDs = append(tenantIDs, id.String())
		}
		query = `
			SELECT ` + prefixColumns("p") + `
			FROM client_profiles p
			WHERE (p.tenant_id = ANY($1)
				OR EXISTS (
					SELECT 1 FROM tenant_access a
					WHERE a.client_profile_id = p.id AND a.tenant_id = ANY($1)
				))`
		args = append(args, tenantIDs)
		if !scope.ClientProfileID.IsNil() {
			query += ` AND p.id = $2`
			args = append(args, scope.ClientProfileID)
		}
	}
	query += ` ORDER BY p.created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list client profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.ClientProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateAccess(ctx context.Context, g *models.TenantAccess) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenant_access (id, client_profile_id, tenant_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		g.ID, g.ClientProfileID, g.TenantID, g.CreatedBy, g.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "tenant_access_profile_tenant_key") {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert tenant access: %w", err)
	}
	return nil
}

func (s *Postgres) DeleteAccess(ctx context.Context, profileID domain.ClientProfileID, tenantID domain.TenantID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tenant_access WHERE client_profile_id = $1 AND tenant_id = $2`,
		profileID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("delete tenant access: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tenant access: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListAccessByProfile(ctx context.Context, profileID domain.ClientProfileID) ([]models.TenantAccess, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_profile_id, tenant_id, created_by, created_at
		FROM tenant_access WHERE client_profile_id = $1
		ORDER BY created_at`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list tenant access: %w", err)
	}
	defer rows.Close()

	var out []models.TenantAccess
	for rows.Next() {
		var g models.TenantAccess
		if err := rows.Scan(&g.ID, &g.ClientProfileID, &g.TenantID, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant access: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ProfileOwner returns the owning tenant of a profile.
func (s *Postgres) ProfileOwner(ctx context.Context, profileID domain.ClientProfileID) (domain.TenantID, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT tenant_id FROM client_profiles WHERE id = $1`, profileID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TenantID{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.TenantID{}, fmt.Errorf("profile owner: %w", err)
	}
	return domain.ParseTenantID(raw)
}

func (s *Postgres) GrantedTenantIDs(ctx context.Context, profileID domain.ClientProfileID) ([]domain.TenantID, error) {
	grants, err := s.ListAccessByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.TenantID, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.TenantID)
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.ClientProfile, error) {
	var p models.ClientProfile
	var settings []byte
	err := row.Scan(
		&p.ID, &p.TenantID, &p.PartnerOne, &p.PartnerTwo, &p.WeddingDate, &p.Venue,
		&p.Status, &settings, &p.WebsiteEnabled, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan client profile: %w", err)
	}
	p.WebsiteSettings = settings
	return &p, nil
}

func prefixColumns(alias string) string {
	return alias + `.id, ` + alias + `.tenant_id, ` + alias + `.partner_one, ` + alias + `.partner_two, ` +
		alias + `.wedding_date, ` + alias + `.venue, ` + alias + `.status, ` + alias + `.website_settings, ` +
		alias + `.website_enabled, ` + alias + `.created_at, ` + alias + `.updated_at`
}
