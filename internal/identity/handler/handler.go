// Package handler wires the auth endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vowline/internal/access"
	"vowline/internal/identity/service"
	"vowline/internal/platform/middleware"
	"vowline/internal/transport/http/shared"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
	"vowline/pkg/requestcontext"
)

type Handler struct {
	service      *service.Service
	logger       *slog.Logger
	secureCookie bool
}

func New(s *service.Service, logger *slog.Logger, secureCookie bool) *Handler {
	return &Handler{service: s, logger: logger, secureCookie: secureCookie}
}

// RegisterPublic mounts the unauthenticated auth routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/forgot-password", h.handleForgotPassword)
		r.Post("/reset-password", h.handleResetPassword)
	})
}

// Register mounts the session-bound auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
	})
	r.With(middleware.RequireRole(access.RoleTenant)).
		Post("/tenant/clients/{clientID}/users", h.handleCreateClientUser)
}

// RegisterAdmin mounts user provisioning for the platform operator.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/users", h.handleCreateUser)
}

type userResponse struct {
	ID              domain.UserID          `json:"id"`
	Email           string                 `json:"email"`
	Role            access.Role            `json:"role"`
	TenantID        domain.TenantID        `json:"tenant_id,omitempty"`
	ClientProfileID domain.ClientProfileID `json:"client_profile_id,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logError(r, "login failed", err)
		shared.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user": userResponse{
			ID:              result.User.ID,
			Email:           result.User.Email,
			Role:            result.User.Role,
			TenantID:        result.User.TenantID,
			ClientProfileID: result.User.ClientProfileID,
		},
		"expires_at": result.Session.ExpiresAt,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	raw := middleware.BearerToken(r)
	if raw == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid credentials"))
		return
	}
	if err := h.service.Logout(r.Context(), raw); err != nil {
		h.logError(r, "logout failed", err)
		shared.WriteError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"id":                p.UserID,
		"email":             p.Email,
		"role":              p.Role,
		"tenant_id":         p.TenantID,
		"client_profile_id": p.ClientProfileID,
		"grants":            p.Grants,
	})
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		h.logError(r, "forgot password failed", err)
		shared.WriteError(w, err)
		return
	}
	// Same response for known and unknown addresses.
	shared.WriteJSON(w, http.StatusAccepted, map[string]any{
		"message": "if the address exists, a reset email has been sent",
	})
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.logError(r, "reset password failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"message": "password updated"})
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	var req struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		Role            string `json:"role"`
		TenantID        string `json:"tenant_id"`
		ClientProfileID string `json:"client_profile_id"`
	}
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	input := service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     access.Role(req.Role),
	}
	if !input.Role.IsValid() {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown role"))
		return
	}
	if req.TenantID != "" {
		id, err := domain.ParseTenantID(req.TenantID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		input.TenantID = id
	}
	if req.ClientProfileID != "" {
		id, err := domain.ParseClientProfileID(req.ClientProfileID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		input.ClientProfileID = id
	}

	user, err := h.service.CreateUser(r.Context(), p, input)
	if err != nil {
		h.logError(r, "failed to create user", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, userResponse{
		ID:              user.ID,
		Email:           user.Email,
		Role:            user.Role,
		TenantID:        user.TenantID,
		ClientProfileID: user.ClientProfileID,
	})
}

// handleCreateClientUser lets a planner invite the couple behind a profile.
// The account is always a CLIENT of the planner's own tenant.
func (h *Handler) handleCreateClientUser(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	clientID, err := domain.ParseClientProfileID(chi.URLParam(r, "clientID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), p, service.CreateUserInput{
		Email:           req.Email,
		Password:        req.Password,
		Role:            access.RoleClient,
		TenantID:        p.TenantID,
		ClientProfileID: clientID,
	})
	if err != nil {
		h.logError(r, "failed to create client user", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, userResponse{
		ID:              user.ID,
		Email:           user.Email,
		Role:            user.Role,
		TenantID:        user.TenantID,
		ClientProfileID: user.ClientProfileID,
	})
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
}
