// Package service orchestrates tenant administration and branding.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"vowline/internal/access"
	"vowline/internal/tenant/metrics"
	"vowline/internal/tenant/models"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/requestcontext"
)

type TenantStore interface {
	CreateIfNameAvailable(ctx context.Context, tenant *models.Tenant) error
	Update(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, id domain.TenantID) (*models.Tenant, error)
	List(ctx context.Context) ([]*models.Tenant, error)
}

// LogoStore persists uploaded logo images and returns a serving URL.
type LogoStore interface {
	Save(ctx context.Context, tenantID domain.TenantID, contentType string, data []byte) (string, error)
}

// Service orchestrates tenant management. All operations re-check the guard;
// route-level role fencing is a convenience, not the enforcement point.
type Service struct {
	tenants TenantStore
	logos   LogoStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogoStore(store LogoStore) Option {
	return func(s *Service) { s.logos = store }
}

func New(tenants TenantStore, opts ...Option) *Service {
	s := &Service{tenants: tenants, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTenant registers a new planning business. SUPERADMIN only.
func (s *Service) CreateTenant(ctx context.Context, p access.Principal, name string) (*models.Tenant, error) {
	if err := requireSuperadmin(p); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	t, err := models.NewTenant(domain.TenantID(uuid.New()), name, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.MessageOf(err))
		}
		return nil, err
	}

	if err := s.tenants.CreateIfNameAvailable(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "tenant name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tenant")
	}

	s.logger.InfoContext(ctx, "tenant created",
		"tenant_id", t.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncTenantsCreated()
	return t, nil
}

// ListTenants returns every tenant. SUPERADMIN only.
func (s *Service) ListTenants(ctx context.Context, p access.Principal) ([]*models.Tenant, error) {
	if err := requireSuperadmin(p); err != nil {
		return nil, err
	}
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenants")
	}
	return tenants, nil
}

// GetBranding returns the branding block the principal may see. TENANT users
// read their own tenant; SUPERADMIN may read any via targetID.
func (s *Service) GetBranding(ctx context.Context, p access.Principal, targetID domain.TenantID) (*models.Tenant, error) {
	tenant, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}
	d := access.Authorize(p, access.Resource{TenantID: tenant.ID, OwnerTenantID: tenant.ID}, access.ActionRead)
	if !d.Allowed {
		return nil, denied(d)
	}
	return tenant, nil
}

// UpdateBranding replaces the tenant's branding block.
func (s *Service) UpdateBranding(ctx context.Context, p access.Principal, targetID domain.TenantID, branding models.Branding) (*models.Tenant, error) {
	tenant, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}
	d := access.Authorize(p, access.Resource{TenantID: tenant.ID, OwnerTenantID: tenant.ID}, access.ActionWrite)
	if !d.Allowed {
		return nil, denied(d)
	}

	if err := tenant.ApplyBranding(branding, requestcontext.Now(ctx)); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.MessageOf(err))
	}
	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update branding")
	}
	s.metrics.IncBrandingUpdates()
	return tenant, nil
}

// Suspend freezes a tenant. SUPERADMIN only. The guard denies all operations
// by the tenant's users from the next request on; no cascade writes happen.
func (s *Service) Suspend(ctx context.Context, p access.Principal, id domain.TenantID) (*models.Tenant, error) {
	return s.transition(ctx, p, id, (*models.Tenant).Suspend, func() {
		s.metrics.IncTenantsSuspended()
	})
}

// Reactivate unfreezes a suspended tenant. SUPERADMIN only.
func (s *Service) Reactivate(ctx context.Context, p access.Principal, id domain.TenantID) (*models.Tenant, error) {
	return s.transition(ctx, p, id, (*models.Tenant).Reactivate, nil)
}

// Deactivate is the soft delete behind DELETE /admin/tenants. SUPERADMIN only.
func (s *Service) Deactivate(ctx context.Context, p access.Principal, id domain.TenantID) (*models.Tenant, error) {
	return s.transition(ctx, p, id, (*models.Tenant).Deactivate, nil)
}

// UploadLogo stores a logo image and records its URL on the tenant.
// SUPERADMIN only; tenants change other branding fields themselves but logo
// review stays with the platform operator.
func (s *Service) UploadLogo(ctx context.Context, p access.Principal, id domain.TenantID, contentType string, data []byte) (*models.Tenant, error) {
	if err := requireSuperadmin(p); err != nil {
		return nil, err
	}
	if s.logos == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "logo storage not configured")
	}
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "logo file is required")
	}
	if contentType != "image/png" && contentType != "image/jpeg" && contentType != "image/svg+xml" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "logo must be png, jpeg, or svg")
	}

	tenant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.logos.Save(ctx, id, contentType, data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store logo")
	}

	branding := tenant.Branding
	branding.LogoURL = url
	if err := tenant.ApplyBranding(branding, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update tenant")
	}
	return tenant, nil
}

func (s *Service) transition(ctx context.Context, p access.Principal, id domain.TenantID, apply func(*models.Tenant, time.Time) error, onSuccess func()) (*models.Tenant, error) {
	if err := requireSuperadmin(p); err != nil {
		return nil, err
	}
	tenant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(tenant, requestcontext.Now(ctx)); err != nil {
		return nil, dErrors.New(dErrors.CodeConflict, dErrors.MessageOf(err))
	}
	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update tenant")
	}
	s.logger.InfoContext(ctx, "tenant status changed",
		"tenant_id", tenant.ID,
		"status", tenant.Status,
		"actor_id", p.UserID,
		"request_id", requestcontext.RequestID(ctx),
	)
	if onSuccess != nil {
		onSuccess()
	}
	return tenant, nil
}

func (s *Service) load(ctx context.Context, id domain.TenantID) (*models.Tenant, error) {
	tenant, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "tenant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant")
	}
	return tenant, nil
}

func requireSuperadmin(p access.Principal) error {
	if !p.Active {
		return dErrors.New(dErrors.CodeForbidden, "account is inactive")
	}
	if p.Role != access.RoleSuperadmin {
		return dErrors.New(dErrors.CodeForbidden, "superadmin role required")
	}
	return nil
}

func denied(d access.Decision) error {
	return dErrors.New(dErrors.CodeForbidden, string(d.Reason))
}
