package models

import (
	"time"

	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
)

// TaskStatus is the planning state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// IsValid reports whether the status is one of the known states.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task is a planning to-do filed under a couple.
//
// Invariants:
//   - TenantID always equals the owning tenant of the ClientProfile; shared
//     tenants see the task through grants, the column never changes
//   - Title is non-empty
type Task struct {
	ID              domain.TaskID          `json:"id"`
	TenantID        domain.TenantID        `json:"tenant_id"`
	ClientProfileID domain.ClientProfileID `json:"client_profile_id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Status          TaskStatus             `json:"status"`
	DueDate         *time.Time             `json:"due_date,omitempty"`
	CreatedBy       domain.UserID          `json:"created_by"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func NewTask(id domain.TaskID, tenantID domain.TenantID, clientProfileID domain.ClientProfileID, title string, createdBy domain.UserID, now time.Time) (*Task, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "task title is required")
	}
	return &Task{
		ID:              id,
		TenantID:        tenantID,
		ClientProfileID: clientProfileID,
		Title:           title,
		Status:          TaskStatusTodo,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
