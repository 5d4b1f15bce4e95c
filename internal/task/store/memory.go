// Package store provides task and comment persistence.
package store

import (
	"context"
	"sort"
	"sync"

	"vowline/internal/task/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

// InMemory keeps tasks and comments in maps. Deleting a task removes its
// comments, mirroring the postgres cascade.
type InMemory struct {
	mu       sync.RWMutex
	tasks    map[domain.TaskID]models.Task
	comments map[domain.CommentID]models.Comment
}

func NewInMemory() *InMemory {
	return &InMemory{
		tasks:    make(map[domain.TaskID]models.Task),
		comments: make(map[domain.CommentID]models.Comment),
	}
}

func (s *InMemory) CreateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; ok {
		return sentinel.ErrConflict
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *InMemory) UpdateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *InMemory) DeleteTask(ctx context.Context, id domain.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.tasks, id)
	for commentID, comment := range s.comments {
		if comment.TaskID == id {
			delete(s.comments, commentID)
		}
	}
	return nil
}

func (s *InMemory) FindTaskByID(ctx context.Context, id domain.TaskID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &task, nil
}

// ListTasksByProfiles returns tasks of the given profiles ordered by creation
// time. The service derives the profile set from the caller's scope.
func (s *InMemory) ListTasksByProfiles(ctx context.Context, profileIDs []domain.ClientProfileID) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[domain.ClientProfileID]struct{}, len(profileIDs))
	for _, id := range profileIDs {
		wanted[id] = struct{}{}
	}
	out := make([]*models.Task, 0)
	for _, task := range s.tasks {
		if _, ok := wanted[task.ClientProfileID]; ok {
			t := task
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[comment.TaskID]; !ok {
		return sentinel.ErrNotFound
	}
	s.comments[comment.ID] = *comment
	return nil
}

func (s *InMemory) UpdateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[comment.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.comments[comment.ID] = *comment
	return nil
}

func (s *InMemory) DeleteComment(ctx context.Context, id domain.CommentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *InMemory) FindCommentByID(ctx context.Context, id domain.CommentID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.comments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &comment, nil
}

func (s *InMemory) ListCommentsByTask(ctx context.Context, taskID domain.TaskID) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Comment, 0)
	for _, comment := range s.comments {
		if comment.TaskID == taskID {
			c := comment
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
