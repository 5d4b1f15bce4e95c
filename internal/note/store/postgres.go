package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vowline/internal/note/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

const noteColumns = `id, tenant_id, client_profile_id, title, body, meeting_date,
	created_by, created_at, updated_at`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, n *models.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meeting_notes (`+noteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.TenantID, n.ClientProfileID, n.Title, n.Body, n.MeetingDate,
		n.CreatedBy, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, n *models.Note) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE meeting_notes
		SET title = $2, body = $3, meeting_date = $4, updated_at = $5
		WHERE id = $1`,
		n.ID, n.Title, n.Body, n.MeetingDate, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return affectedOrNotFound(res, "update note")
}

func (s *Postgres) Delete(ctx context.Context, id domain.NoteID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM meeting_notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return affectedOrNotFound(res, "delete note")
}

func (s *Postgres) FindByID(ctx context.Context, id domain.NoteID) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM meeting_notes WHERE id = $1`, id)
	return scanNote(row)
}

func (s *Postgres) ListByProfiles(ctx context.Context, profileIDs []domain.ClientProfileID) ([]*models.Note, error) {
	if len(profileIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(profileIDs))
	for _, id := range profileIDs {
		ids = append(ids, id.String())
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM meeting_notes
		WHERE client_profile_id = ANY($1)
		ORDER BY created_at`, ids)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []*models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	var n models.Note
	err := row.Scan(
		&n.ID, &n.TenantID, &n.ClientProfileID, &n.Title, &n.Body, &n.MeetingDate,
		&n.CreatedBy, &n.CreatedAt, &n.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan note: %w", err)
	}
	return &n, nil
}

func affectedOrNotFound(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
