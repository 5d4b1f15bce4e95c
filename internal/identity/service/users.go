package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"vowline/internal/access"
	"vowline/internal/identity/models"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/requestcontext"
	"vowline/pkg/secrets"
)

// CreateUserInput carries the fields for provisioning an account.
type CreateUserInput struct {
	Email           string
	Password        string
	Role            access.Role
	TenantID        domain.TenantID
	ClientProfileID domain.ClientProfileID
}

// CreateUser provisions an account. SUPERADMIN may create any role; TENANT
// planners may only create CLIENT accounts for couples of their own tenant.
func (s *Service) CreateUser(ctx context.Context, p access.Principal, input CreateUserInput) (*models.User, error) {
	if !p.Active {
		return nil, dErrors.New(dErrors.CodeForbidden, "account is inactive")
	}
	if p.TenantSuspended {
		return nil, dErrors.New(dErrors.CodeForbidden, "tenant is suspended")
	}
	switch p.Role {
	case access.RoleSuperadmin:
	case access.RoleTenant:
		if input.Role != access.RoleClient {
			return nil, dErrors.New(dErrors.CodeForbidden, "planners may only create client accounts")
		}
		if input.TenantID != p.TenantID {
			return nil, dErrors.New(dErrors.CodeForbidden, "client accounts must belong to your tenant")
		}
	default:
		return nil, dErrors.New(dErrors.CodeForbidden, "role not permitted")
	}

	if input.Role == access.RoleClient && s.profiles != nil && !input.ClientProfileID.IsNil() {
		owner, err := s.profiles.ProfileOwner(ctx, input.ClientProfileID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "client profile not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client profile")
		}
		if owner != input.TenantID {
			return nil, dErrors.New(dErrors.CodeForbidden, "client profile belongs to another tenant")
		}
	}

	if len(input.Password) < 8 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	hash, err := secrets.HashPassword(input.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user, err := models.NewUser(
		domain.UserID(uuid.New()),
		input.Email,
		input.Role,
		hash,
		input.TenantID,
		input.ClientProfileID,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.MessageOf(err))
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user created",
		"user_id", user.ID,
		"role", user.Role,
		"actor_id", p.UserID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return user, nil
}
