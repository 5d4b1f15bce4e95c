// Package service orchestrates client profiles and cross-tenant sharing.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"vowline/internal/access"
	"vowline/internal/client/metrics"
	"vowline/internal/client/models"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/requestcontext"
)

// ProfileStore persists client profiles and TenantAccess grants.
type ProfileStore interface {
	CreateProfile(ctx context.Context, profile *models.ClientProfile) error
	UpdateProfile(ctx context.Context, profile *models.ClientProfile) error
	FindProfileByID(ctx context.Context, id domain.ClientProfileID) (*models.ClientProfile, error)
	ListProfiles(ctx context.Context, scope access.Scope) ([]*models.ClientProfile, error)
	CreateAccess(ctx context.Context, grant *models.TenantAccess) error
	DeleteAccess(ctx context.Context, profileID domain.ClientProfileID, tenantID domain.TenantID) error
	ListAccessByProfile(ctx context.Context, profileID domain.ClientProfileID) ([]models.TenantAccess, error)
	GrantedTenantIDs(ctx context.Context, profileID domain.ClientProfileID) ([]domain.TenantID, error)
}

// TenantDirectory resolves tenants when a client shares access, so grants can
// only target real, non-deactivated tenants.
type TenantDirectory interface {
	TenantExists(ctx context.Context, id domain.TenantID) (bool, error)
}

type Service struct {
	store   ProfileStore
	tenants TenantDirectory
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

func New(store ProfileStore, tenants TenantDirectory, opts ...Option) *Service {
	s := &Service{store: store, tenants: tenants, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProfileInput carries the fields a planner sets when onboarding a
// couple.
type CreateProfileInput struct {
	PartnerOne  string     `json:"partner_one"`
	PartnerTwo  string     `json:"partner_two"`
	WeddingDate *time.Time `json:"wedding_date"`
	Venue       string     `json:"venue"`
}

// CreateProfile onboards a couple under the planner's own tenant. TENANT only;
// the profile's tenant is always the caller's, never request input.
func (s *Service) CreateProfile(ctx context.Context, p access.Principal, input CreateProfileInput) (*models.ClientProfile, error) {
	if p.Role != access.RoleTenant {
		return nil, dErrors.New(dErrors.CodeForbidden, "tenant role required")
	}
	d := access.Authorize(p, access.Resource{TenantID: p.TenantID, OwnerTenantID: p.TenantID}, access.ActionWrite)
	if !d.Allowed {
		return nil, denied(d)
	}

	profile, err := models.NewClientProfile(
		domain.ClientProfileID(uuid.New()),
		p.TenantID,
		strings.TrimSpace(input.PartnerOne),
		strings.TrimSpace(input.PartnerTwo),
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.MessageOf(err))
	}
	profile.WeddingDate = input.WeddingDate
	profile.Venue = strings.TrimSpace(input.Venue)

	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client profile")
	}

	s.logger.InfoContext(ctx, "client profile created",
		"client_profile_id", profile.ID,
		"tenant_id", profile.TenantID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncProfilesCreated()
	return profile, nil
}

// ListProfiles returns the roster the principal may see: owned couples for
// planners, the couple's own profile for clients, everything for SUPERADMIN.
func (s *Service) ListProfiles(ctx context.Context, p access.Principal) ([]*models.ClientProfile, error) {
	if !p.Active {
		return nil, dErrors.New(dErrors.CodeForbidden, string(access.DenyInactiveAccount))
	}
	if p.TenantSuspended {
		return nil, dErrors.New(dErrors.CodeForbidden, string(access.DenySuspendedTenant))
	}
	scope := access.ScopeFor(p)
	if scope.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeForbidden, "no visibility scope")
	}
	profiles, err := s.store.ListProfiles(ctx, scope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list client profiles")
	}
	return profiles, nil
}

// GetProfile loads one profile with the full guard check.
func (s *Service) GetProfile(ctx context.Context, p access.Principal, id domain.ClientProfileID) (*models.ClientProfile, error) {
	return s.authorize(ctx, p, id, access.ActionRead)
}

// UpdateProfileInput carries the editable roster fields.
type UpdateProfileInput struct {
	PartnerOne  string     `json:"partner_one"`
	PartnerTwo  string     `json:"partner_two"`
	WeddingDate *time.Time `json:"wedding_date"`
	Venue       string     `json:"venue"`
}

// UpdateProfile edits the roster fields. Owning tenant writes; shared tenants
// are read-only and denied here.
func (s *Service) UpdateProfile(ctx context.Context, p access.Principal, id domain.ClientProfileID, input UpdateProfileInput) (*models.ClientProfile, error) {
	profile, err := s.authorize(ctx, p, id, access.ActionWrite)
	if err != nil {
		return nil, err
	}

	partnerOne := strings.TrimSpace(input.PartnerOne)
	if partnerOne == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "at least one partner name is required")
	}
	profile.PartnerOne = partnerOne
	profile.PartnerTwo = strings.TrimSpace(input.PartnerTwo)
	profile.WeddingDate = input.WeddingDate
	profile.Venue = strings.TrimSpace(input.Venue)
	profile.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update client profile")
	}
	return profile, nil
}

// UpdateWebsiteSettings replaces the couple's website-builder configuration.
func (s *Service) UpdateWebsiteSettings(ctx context.Context, p access.Principal, id domain.ClientProfileID, settings json.RawMessage) (*models.ClientProfile, error) {
	profile, err := s.authorize(ctx, p, id, access.ActionWrite)
	if err != nil {
		return nil, err
	}
	if err := profile.ApplyWebsiteSettings(settings, requestcontext.Now(ctx)); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.MessageOf(err))
	}
	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update website settings")
	}
	return profile, nil
}

// SetWebsiteEnabled flips the public website toggle.
func (s *Service) SetWebsiteEnabled(ctx context.Context, p access.Principal, id domain.ClientProfileID, enabled bool) (*models.ClientProfile, error) {
	profile, err := s.authorize(ctx, p, id, access.ActionWrite)
	if err != nil {
		return nil, err
	}
	profile.SetWebsiteEnabled(enabled, requestcontext.Now(ctx))
	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update website toggle")
	}
	return profile, nil
}

// ShareAccess grants another tenant read visibility into the caller's profile.
// CLIENT only; duplicates conflict, and the owning tenant cannot be a grant
// target.
func (s *Service) ShareAccess(ctx context.Context, p access.Principal, targetTenantID domain.TenantID) (*models.TenantAccess, error) {
	profile, err := s.requireOwnProfile(ctx, p)
	if err != nil {
		return nil, err
	}
	if targetTenantID == profile.TenantID {
		return nil, dErrors.New(dErrors.CodeConflict, "profile already belongs to that tenant")
	}

	exists, err := s.tenants.TenantExists(ctx, targetTenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify tenant")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "tenant not found")
	}

	grant := &models.TenantAccess{
		ID:              uuid.New(),
		ClientProfileID: profile.ID,
		TenantID:        targetTenantID,
		CreatedBy:       p.UserID,
		CreatedAt:       requestcontext.Now(ctx),
	}
	if err := s.store.CreateAccess(ctx, grant); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "access already shared with that tenant")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to share access")
	}

	s.logger.InfoContext(ctx, "tenant access shared",
		"client_profile_id", profile.ID,
		"granted_tenant_id", targetTenantID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncAccessShared()
	return grant, nil
}

// RevokeAccess removes exactly the grant for the named tenant. Other grants
// and the owning tenant's access are untouched.
func (s *Service) RevokeAccess(ctx context.Context, p access.Principal, targetTenantID domain.TenantID) error {
	profile, err := s.requireOwnProfile(ctx, p)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAccess(ctx, profile.ID, targetTenantID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no access grant for that tenant")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke access")
	}

	s.logger.InfoContext(ctx, "tenant access revoked",
		"client_profile_id", profile.ID,
		"revoked_tenant_id", targetTenantID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncAccessRevoked()
	return nil
}

// ListAccess returns the caller's active grants. CLIENT only.
func (s *Service) ListAccess(ctx context.Context, p access.Principal) ([]models.TenantAccess, error) {
	profile, err := s.requireOwnProfile(ctx, p)
	if err != nil {
		return nil, err
	}
	grants, err := s.store.ListAccessByProfile(ctx, profile.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list access grants")
	}
	return grants, nil
}

// authorize loads the profile and runs the guard with the stored owner tenant
// and current grants, never identifiers from the request.
func (s *Service) authorize(ctx context.Context, p access.Principal, id domain.ClientProfileID, action access.Action) (*models.ClientProfile, error) {
	profile, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	shared, err := s.store.GrantedTenantIDs(ctx, profile.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access grants")
	}
	d := access.Authorize(p, access.Resource{
		TenantID:        profile.TenantID,
		ClientProfileID: profile.ID,
		OwnerTenantID:   profile.TenantID,
		SharedWith:      shared,
	}, action)
	if !d.Allowed {
		return nil, denied(d)
	}
	return profile, nil
}

func (s *Service) requireOwnProfile(ctx context.Context, p access.Principal) (*models.ClientProfile, error) {
	if p.Role != access.RoleClient || p.ClientProfileID.IsNil() {
		return nil, dErrors.New(dErrors.CodeForbidden, "client role required")
	}
	if !p.Active {
		return nil, dErrors.New(dErrors.CodeForbidden, string(access.DenyInactiveAccount))
	}
	if p.TenantSuspended {
		return nil, dErrors.New(dErrors.CodeForbidden, string(access.DenySuspendedTenant))
	}
	return s.load(ctx, p.ClientProfileID)
}

func (s *Service) load(ctx context.Context, id domain.ClientProfileID) (*models.ClientProfile, error) {
	profile, err := s.store.FindProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client profile")
	}
	return profile, nil
}

func denied(d access.Decision) error {
	return dErrors.New(dErrors.CodeForbidden, string(d.Reason))
}
