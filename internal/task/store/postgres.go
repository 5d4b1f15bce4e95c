package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vowline/internal/task/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

const taskColumns = `id, tenant_id, client_profile_id, title, description, status, due_date,
	created_by, created_at, updated_at`

const commentColumns = `id, task_id, tenant_id, client_profile_id, author_id, body, created_at, updated_at`

// Postgres persists tasks and comments. Comments cascade on task delete via
// the schema's foreign key.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateTask(ctx context.Context, t *models.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.TenantID, t.ClientProfileID, t.Title, t.Description, t.Status, t.DueDate,
		t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateTask(ctx context.Context, t *models.Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, due_date = $5, updated_at = $6
		WHERE id = $1`,
		t.ID, t.Title, t.Description, t.Status, t.DueDate, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return affectedOrNotFound(res, "update task")
}

func (s *Postgres) DeleteTask(ctx context.Context, id domain.TaskID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return affectedOrNotFound(res, "delete task")
}

func (s *Postgres) FindTaskByID(ctx context.Context, id domain.TaskID) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (s *Postgres) ListTasksByProfiles(ctx context.Context, profileIDs []domain.ClientProfileID) ([]*models.Task, error) {
	if len(profileIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(profileIDs))
	for _, id := range profileIDs {
		ids = append(ids, id.String())
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE client_profile_id = ANY($1)
		ORDER BY created_at`, ids)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateComment(ctx context.Context, c *models.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_comments (`+commentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.TaskID, c.TenantID, c.ClientProfileID, c.AuthorID, c.Body, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateComment(ctx context.Context, c *models.Comment) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE task_comments SET body = $2, updated_at = $3 WHERE id = $1`,
		c.ID, c.Body, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return affectedOrNotFound(res, "update comment")
}

func (s *Postgres) DeleteComment(ctx context.Context, id domain.CommentID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM task_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return affectedOrNotFound(res, "delete comment")
}

func (s *Postgres) FindCommentByID(ctx context.Context, id domain.CommentID) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM task_comments WHERE id = $1`, id)
	return scanComment(row)
}

func (s *Postgres) ListCommentsByTask(ctx context.Context, taskID domain.TaskID) ([]*models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM task_comments
		WHERE task_id = $1 ORDER BY created_at`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID, &t.TenantID, &t.ClientProfileID, &t.Title, &t.Description, &t.Status, &t.DueDate,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &t, nil
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.TaskID, &c.TenantID, &c.ClientProfileID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &c, nil
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
