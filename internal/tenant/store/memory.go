// Package store provides tenant persistence. The in-memory implementation
// backs unit tests and local development; postgres is the production path.
package store

import (
	"context"
	"strings"
	"sync"

	"vowline/internal/tenant/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store with the same semantics as the
// postgres implementation, including case-insensitive name uniqueness.
type InMemory struct {
	mu      sync.RWMutex
	tenants map[domain.TenantID]models.Tenant
}

func NewInMemory() *InMemory {
	return &InMemory{tenants: make(map[domain.TenantID]models.Tenant)}
}

func (s *InMemory) CreateIfNameAvailable(ctx context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tenants {
		if strings.EqualFold(existing.Name, tenant.Name) {
			return sentinel.ErrConflict
		}
	}
	s.tenants[tenant.ID] = *tenant
	return nil
}

func (s *InMemory) Update(ctx context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[tenant.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.tenants[tenant.ID] = *tenant
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.TenantID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copy := tenant
	return &copy, nil
}

// TenantSuspended reports whether the tenant is currently suspended. Unknown
// tenants count as suspended so orphaned principals cannot act.
func (s *InMemory) TenantSuspended(ctx context.Context, id domain.TenantID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[id]
	if !ok {
		return true, nil
	}
	return tenant.Status != models.TenantStatusActive, nil
}

// TenantExists reports whether a tenant exists and has not been deactivated.
// The client sharing flow uses this to validate grant targets.
func (s *InMemory) TenantExists(ctx context.Context, id domain.TenantID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[id]
	return ok && tenant.Status != models.TenantStatusInactive, nil
}

func (s *InMemory) List(ctx context.Context) ([]*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Tenant, 0, len(s.tenants))
	for _, tenant := range s.tenants {
		copy := tenant
		out = append(out, &copy)
	}
	return out, nil
}
