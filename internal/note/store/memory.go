// Package store provides meeting note persistence.
package store

import (
	"context"
	"sort"
	"sync"

	"vowline/internal/note/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

type InMemory struct {
	mu    sync.RWMutex
	notes map[domain.NoteID]models.Note
}

func NewInMemory() *InMemory {
	return &InMemory{notes: make(map[domain.NoteID]models.Note)}
}

func (s *InMemory) Create(ctx context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[note.ID]; ok {
		return sentinel.ErrConflict
	}
	s.notes[note.ID] = *note
	return nil
}

func (s *InMemory) Update(ctx context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[note.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.notes[note.ID] = *note
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id domain.NoteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.NoteID) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &note, nil
}

func (s *InMemory) ListByProfiles(ctx context.Context, profileIDs []domain.ClientProfileID) ([]*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[domain.ClientProfileID]struct{}, len(profileIDs))
	for _, id := range profileIDs {
		wanted[id] = struct{}{}
	}
	out := make([]*models.Note, 0)
	for _, note := range s.notes {
		if _, ok := wanted[note.ClientProfileID]; ok {
			n := note
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
