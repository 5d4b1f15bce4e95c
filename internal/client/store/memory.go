package store

import (
	"context"
	"sort"
	"sync"

	"vowline/internal/access"
	"vowline/internal/client/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

// InMemory keeps profiles and grants in maps. Used in unit tests and local
// development; the postgres store is the production implementation.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[domain.ClientProfileID]models.ClientProfile
	grants   []models.TenantAccess
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[domain.ClientProfileID]models.ClientProfile)}
}

func (s *InMemory) CreateProfile(ctx context.Context, profile *models.ClientProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.ID]; ok {
		return sentinel.ErrConflict
	}
	s.profiles[profile.ID] = *profile
	return nil
}

func (s *InMemory) UpdateProfile(ctx context.Context, profile *models.ClientProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.profiles[profile.ID] = *profile
	return nil
}

func (s *InMemory) FindProfileByID(ctx context.Context, id domain.ClientProfileID) (*models.ClientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &profile, nil
}

// ListProfiles returns profiles visible under the scope: owned profiles for
// each scoped tenant plus profiles shared with it through grants.
func (s *InMemory) ListProfiles(ctx context.Context, scope access.Scope) ([]*models.ClientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if scope.IsEmpty() {
		return nil, nil
	}

	out := make([]*models.ClientProfile, 0)
	for id, profile := range s.profiles {
		p := profile
		if !scope.PermitsClient(id) {
			continue
		}
		if scope.PermitsTenant(p.TenantID) || s.sharedWithAnyLocked(id, scope.TenantIDs) {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) sharedWithAnyLocked(profileID domain.ClientProfileID, tenants []domain.TenantID) bool {
	for _, g := range s.grants {
		if g.ClientProfileID != profileID {
			continue
		}
		for _, t := range tenants {
			if g.TenantID == t {
				return true
			}
		}
	}
	return false
}

func (s *InMemory) CreateAccess(ctx context.Context, grant *models.TenantAccess) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.grants {
		if g.ClientProfileID == grant.ClientProfileID && g.TenantID == grant.TenantID {
			return sentinel.ErrConflict
		}
	}
	s.grants = append(s.grants, *grant)
	return nil
}

func (s *InMemory) DeleteAccess(ctx context.Context, profileID domain.ClientProfileID, tenantID domain.TenantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.grants {
		if g.ClientProfileID == profileID && g.TenantID == tenantID {
			s.grants = append(s.grants[:i], s.grants[i+1:]...)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemory) ListAccessByProfile(ctx context.Context, profileID domain.ClientProfileID) ([]models.TenantAccess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TenantAccess, 0)
	for _, g := range s.grants {
		if g.ClientProfileID == profileID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ProfileOwner returns the owning tenant of a profile.
func (s *InMemory) ProfileOwner(ctx context.Context, profileID domain.ClientProfileID) (domain.TenantID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[profileID]
	if !ok {
		return domain.TenantID{}, sentinel.ErrNotFound
	}
	return profile.TenantID, nil
}

// GrantedTenantIDs returns the tenants the profile has shared data with.
// The session resolver calls this to populate Principal.Grants.
func (s *InMemory) GrantedTenantIDs(ctx context.Context, profileID domain.ClientProfileID) ([]domain.TenantID, error) {
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
