package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vowline/internal/notification/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

const notificationColumns = `id, user_id, tenant_id, actor_id, kind, title, body, read, created_at`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, n *models.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.UserID, n.TenantID, n.ActorID, n.Kind, n.Title, n.Body, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.NotificationID) (*models.Notification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

func (s *Postgres) ListByUser(ctx context.Context, userID domain.UserID) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Postgres) CountUnread(ctx context.Context, userID domain.UserID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1 AND read = false`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *Postgres) MarkRead(ctx context.Context, id domain.NotificationID, read bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = $2 WHERE id = $1`, id, read)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// MarkAllRead updates only rows belonging to the given user.
func (s *Postgres) MarkAllRead(ctx context.Context, userID domain.UserID) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return int(n), nil
}

func (s *Postgres) Delete(ctx context.Context, id domain.NotificationID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindPreferences(ctx context.Context, userID domain.UserID) (*models.Preferences, error) {
	var prefs models.Preferences
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, email_on_task, email_on_comment, email_on_note, updated_at
		FROM notification_preferences WHERE user_id = $1`, userID,
	).Scan(&prefs.UserID, &prefs.EmailOnTask, &prefs.EmailOnComment, &prefs.EmailOnNote, &prefs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find preferences: %w", err)
	}
	return &prefs, nil
}

func (s *Postgres) SavePreferences(ctx context.Context, prefs *models.Preferences) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_preferences (user_id, email_on_task, email_on_comment, email_on_note, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET email_on_task = $2, email_on_comment = $3, email_on_note = $4, updated_at = $5`,
		prefs.UserID, prefs.EmailOnTask, prefs.EmailOnComment, prefs.EmailOnNote, prefs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.TenantID, &n.ActorID, &n.Kind, &n.Title, &n.Body, &n.Read, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	return &n, nil
}
