// Package handler wires client roster, website builder, and sharing routes.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vowline/internal/access"
	"vowline/internal/client/service"
	"vowline/internal/platform/middleware"
	"vowline/internal/transport/http/shared"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
	"vowline/pkg/requestcontext"
)

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(s *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: s, logger: logger}
}

// Register mounts the roster routes (planners and clients; the service guard
// narrows what each role sees) and the client-only sharing routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.handleListProfiles)
		r.With(middleware.RequireRole(access.RoleTenant)).Post("/", h.handleCreateProfile)
		r.Route("/{clientID}", func(r chi.Router) {
			r.Get("/", h.handleGetProfile)
			r.Put("/", h.handleUpdateProfile)
			r.Put("/website", h.handleUpdateWebsite)
			r.Post("/website/toggle", h.handleToggleWebsite)
		})
	})

	r.Route("/client", func(r chi.Router) {
		r.Use(middleware.RequireRole(access.RoleClient))
		r.Get("/share-access", h.handleListAccess)
		r.Post("/share-access", h.handleShareAccess)
		r.Delete("/revoke-access/{tenantID}", h.handleRevokeAccess)
	})
}

func (h *Handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	profiles, err := h.service.ListProfiles(r.Context(), p)
	if err != nil {
		h.logError(r, "failed to list client profiles", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"clients": profiles})
}

func (h *Handler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	var input service.CreateProfileInput
	if err := shared.Decode(r, &input); err != nil {
		shared.WriteError(w, err)
		return
	}
	profile, err := h.service.CreateProfile(r.Context(), p, input)
	if err != nil {
		h.logError(r, "failed to create client profile", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, profile)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	h.withClientID(w, r, func(p access.Principal, id domain.ClientProfileID) (any, int, error) {
		profile, err := h.service.GetProfile(r.Context(), p, id)
		if err != nil {
			return nil, 0, err
		}
		return profile, http.StatusOK, nil
	})
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	h.withClientID(w, r, func(p access.Principal, id domain.ClientProfileID) (any, int, error) {
		var input service.UpdateProfileInput
		if err := shared.Decode(r, &input); err != nil {
			return nil, 0, err
		}
		profile, err := h.service.UpdateProfile(r.Context(), p, id, input)
		if err != nil {
			return nil, 0, err
		}
		return profile, http.StatusOK, nil
	})
}

func (h *Handler) handleUpdateWebsite(w http.ResponseWriter, r *http.Request) {
	h.withClientID(w, r, func(p access.Principal, id domain.ClientProfileID) (any, int, error) {
		var req struct {
			Settings json.RawMessage `json:"settings"`
		}
		if err := shared.Decode(r, &req); err != nil {
			return nil, 0, err
		}
		if len(req.Settings) == 0 {
			return nil, 0, dErrors.New(dErrors.CodeInvalidInput, "settings object is required")
		}
		profile, err := h.service.UpdateWebsiteSettings(r.Context(), p, id, req.Settings)
		if err != nil {
			return nil, 0, err
		}
		return profile, http.StatusOK, nil
	})
}

func (h *Handler) handleToggleWebsite(w http.ResponseWriter, r *http.Request) {
	h.withClientID(w, r, func(p access.Principal, id domain.ClientProfileID) (any, int, error) {
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := shared.Decode(r, &req); err != nil {
			return nil, 0, err
		}
		profile, err := h.service.SetWebsiteEnabled(r.Context(), p, id, req.Enabled)
		if err != nil {
			return nil, 0, err
		}
		return profile, http.StatusOK, nil
	})
}

func (h *Handler) handleListAccess(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	grants, err := h.service.ListAccess(r.Context(), p)
	if err != nil {
		h.logError(r, "failed to list access grants", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"grants": grants})
}

func (h *Handler) handleShareAccess(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	var req struct {
		TenantID string `json:"tenant_id"`
	}
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	tenantID, err := domain.ParseTenantID(req.TenantID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	grant, err := h.service.ShareAccess(r.Context(), p, tenantID)
	if err != nil {
		h.logError(r, "failed to share access", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, grant)
}

func (h *Handler) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	tenantID, err := domain.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.service.RevokeAccess(r.Context(), p, tenantID); err != nil {
		h.logError(r, "failed to revoke access", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) withClientID(w http.ResponseWriter, r *http.Request, fn func(access.Principal, domain.ClientProfileID) (any, int, error)) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	id, err := domain.ParseClientProfileID(chi.URLParam(r, "clientID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	body, status, err := fn(p, id)
	if err != nil {
		h.logError(r, "client profile operation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, status, body)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
}
