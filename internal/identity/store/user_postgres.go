package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vowline/internal/identity/models"
	"vowline/internal/platform/postgres"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

const userColumns = `id, tenant_id, client_profile_id, email, role, password_hash, status,
	failed_login_attempts, locked_until, reset_token_hash, reset_token_expires_at,
	created_at, updated_at`

// UserPostgres persists user accounts.
type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

func (s *UserPostgres) Create(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID, nullableID(u.TenantID.String(), u.TenantID.IsNil()),
		nullableID(u.ClientProfileID.String(), u.ClientProfileID.IsNil()),
		u.Email, u.Role, u.PasswordHash, u.Status,
		u.FailedLoginAttempts, u.LockedUntil,
		nullString(u.ResetTokenHash), u.ResetTokenExpiresAt,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "users_email_lower_key") {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserPostgres) Update(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2, role = $3, password_hash = $4, status = $5,
			failed_login_attempts = $6, locked_until = $7,
			reset_token_hash = $8, reset_token_expires_at = $9, updated_at = $10
		WHERE id = $1`,
		u.ID, u.Email, u.Role, u.PasswordHash, u.Status,
		u.FailedLoginAttempts, u.LockedUntil,
		nullString(u.ResetTokenHash), u.ResetTokenExpiresAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *UserPostgres) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *UserPostgres) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email))
	return scanUser(row)
}

// RecipientsFor returns the active accounts that should hear about activity
// on a couple: the owning tenant's planners and the couple's client users.
func (s *UserPostgres) RecipientsFor(ctx context.Context, tenantID domain.TenantID, profileID domain.ClientProfileID) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE status = 'active'
		  AND ((tenant_id = $1 AND client_profile_id IS NULL) OR client_profile_id = $2)`,
		tenantID, profileID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *UserPostgres) FindByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = $1`, tokenHash)
	return scanUser(row)
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u               models.User
		tenantID        sql.NullString
		clientProfileID sql.NullString
		resetTokenHash  sql.NullString
	)
	err := row.Scan(
		&u.ID, &tenantID, &clientProfileID, &u.Email, &u.Role, &u.PasswordHash, &u.Status,
		&u.FailedLoginAttempts, &u.LockedUntil, &resetTokenHash, &u.ResetTokenExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if tenantID.Valid {
		id, err := domain.ParseTenantID(tenantID.String)
		if err != nil {
			return nil, fmt.Errorf("scan user tenant id: %w", err)
		}
		u.TenantID = id
	}
	if clientProfileID.Valid {
		id, err := domain.ParseClientProfileID(clientProfileID.String)
		if err != nil {
			return nil, fmt.Errorf("scan user client profile id: %w", err)
		}
		u.ClientProfileID = id
	}
	u.ResetTokenHash = resetTokenHash.String
	return &u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullableID(s string, isNil bool) any {
	if isNil {
		return nil
	}
	return s
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
