// Package handler wires tenant branding and administration endpoints.
package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vowline/internal/access"
	"vowline/internal/platform/middleware"
	"vowline/internal/tenant/models"
	"vowline/internal/tenant/service"
	"vowline/internal/transport/http/shared"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
	"vowline/pkg/requestcontext"
)

const maxLogoBytes = 2 << 20 // 2 MiB

// Handler exposes tenant branding to planners and tenant administration to
// the platform operator.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(s *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: s, logger: logger}
}

// Register mounts the tenant-facing branding routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tenant/branding", func(r chi.Router) {
		r.Use(middleware.RequireRole(access.RoleTenant, access.RoleSuperadmin))
		r.Get("/", h.handleGetBranding)
		r.Put("/", h.handleUpdateBranding)
	})
}

// RegisterAdmin mounts the SUPERADMIN tenant administration routes. The
// caller fences the subtree with RequireRole(RoleSuperadmin).
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/tenants", h.handleListTenants)
	r.Post("/tenants", h.handleCreateTenant)
	r.Get("/tenants/{tenantID}/branding", h.handleGetTenantBranding)
	r.Post("/tenants/{tenantID}/suspend", h.handleSuspendTenant)
	r.Post("/tenants/{tenantID}/reactivate", h.handleReactivateTenant)
	r.Delete("/tenants/{tenantID}", h.handleDeleteTenant)
	r.Post("/tenants/{tenantID}/logo", h.handleUploadLogo)
}

type brandingResponse struct {
	TenantID domain.TenantID     `json:"tenant_id"`
	Name     string              `json:"name"`
	Status   models.TenantStatus `json:"status"`
	Branding models.Branding     `json:"branding"`
}

func toBrandingResponse(t *models.Tenant) brandingResponse {
	return brandingResponse{TenantID: t.ID, Name: t.Name, Status: t.Status, Branding: t.Branding}
}

func (h *Handler) handleGetBranding(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	tenant, err := h.service.GetBranding(r.Context(), p, p.TenantID)
	if err != nil {
		h.logError(r, "failed to load branding", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toBrandingResponse(tenant))
}

func (h *Handler) handleUpdateBranding(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	var branding models.Branding
	if err := shared.Decode(r, &branding); err != nil {
		shared.WriteError(w, err)
		return
	}
	tenant, err := h.service.UpdateBranding(r.Context(), p, p.TenantID, branding)
	if err != nil {
		h.logError(r, "failed to update branding", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toBrandingResponse(tenant))
}

func (h *Handler) handleListTenants(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	tenants, err := h.service.ListTenants(r.Context(), p)
	if err != nil {
		h.logError(r, "failed to list tenants", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"tenants": tenants})
}

func (h *Handler) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	tenant, err := h.service.CreateTenant(r.Context(), p, req.Name)
	if err != nil {
		h.logError(r, "failed to create tenant", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, tenant)
}

func (h *Handler) handleGetTenantBranding(w http.ResponseWriter, r *http.Request) {
	h.withTenantID(w, r, func(p access.Principal, id domain.TenantID) (any, int, error) {
		tenant, err := h.service.GetBranding(r.Context(), p, id)
		if err != nil {
			return nil, 0, err
		}
		return toBrandingResponse(tenant), http.StatusOK, nil
	})
}

func (h *Handler) handleSuspendTenant(w http.ResponseWriter, r *http.Request) {
	h.withTenantID(w, r, func(p access.Principal, id domain.TenantID) (any, int, error) {
		tenant, err := h.service.Suspend(r.Context(), p, id)
		if err != nil {
			return nil, 0, err
		}
		return tenant, http.StatusOK, nil
	})
}

func (h *Handler) handleReactivateTenant(w http.ResponseWriter, r *http.Request) {
	h.withTenantID(w, r, func(p access.Principal, id domain.TenantID) (any, int, error) {
		tenant, err := h.service.Reactivate(r.Context(), p, id)
		if err != nil {
			return nil, 0, err
		}
		return tenant, http.StatusOK, nil
	})
}

func (h *Handler) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	h.withTenantID(w, r, func(p access.Principal, id domain.TenantID) (any, int, error) {
		if _, err := h.service.Deactivate(r.Context(), p, id); err != nil {
			return nil, 0, err
		}
		return nil, http.StatusNoContent, nil
	})
}

func (h *Handler) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	h.withTenantID(w, r, func(p access.Principal, id domain.TenantID) (any, int, error) {
		if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
			return nil, 0, dErrors.New(dErrors.CodeInvalidInput, "expected multipart form with a logo file")
		}
		file, header, err := r.FormFile("logo")
		if err != nil {
			return nil, 0, dErrors.New(dErrors.CodeInvalidInput, "logo file is required")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxLogoBytes+1))
		if err != nil {
			return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read logo upload")
		}
		if len(data) > maxLogoBytes {
			return nil, 0, dErrors.New(dErrors.CodeInvalidInput, "logo exceeds the 2MB limit")
		}

		tenant, err := h.service.UploadLogo(r.Context(), p, id, header.Header.Get("Content-Type"), data)
		if err != nil {
			return nil, 0, err
		}
		return toBrandingResponse(tenant), http.StatusOK, nil
	})
}

func (h *Handler) withTenantID(w http.ResponseWriter, r *http.Request, fn func(access.Principal, domain.TenantID) (any, int, error)) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	id, err := domain.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	body, status, err := fn(p, id)
	if err != nil {
		h.logError(r, "tenant admin operation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, status, body)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}
