package models

import (
	"time"

	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
)

// Comment is a discussion entry on a task. Editable by its author, or by a
// planner of the task's owning tenant. Tenant and profile columns mirror the
// task's so the thread stays queryable under tenant scoping.
type Comment struct {
	ID              domain.CommentID       `json:"id"`
	TaskID          domain.TaskID          `json:"task_id"`
	TenantID        domain.TenantID        `json:"tenant_id"`
	ClientProfileID domain.ClientProfileID `json:"client_profile_id"`
	AuthorID        domain.UserID          `json:"author_id"`
	Body            string                 `json:"body"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func NewComment(id domain.CommentID, task *Task, authorID domain.UserID, body string, now time.Time) (*Comment, error) {
	if body == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "comment body is required")
	}
	return &Comment{
		ID:              id,
		TaskID:          task.ID,
		TenantID:        task.TenantID,
		ClientProfileID: task.ClientProfileID,
		AuthorID:        authorID,
		Body:            body,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
