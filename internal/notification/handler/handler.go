// Package handler wires the notification inbox endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vowline/internal/access"
	"vowline/internal/notification/models"
	"vowline/internal/notification/service"
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

func (h *Handler) Register(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/unread-count", h.handleUnreadCount)
		r.Post("/mark-all-read", h.handleMarkAllRead)
		r.Get("/preferences", h.handleGetPreferences)
		r.Put("/preferences", h.handleUpdatePreferences)
		r.Route("/{notificationID}", func(r chi.Router) {
			r.Patch("/", h.handleSetRead)
			r.Delete("/", h.handleDelete)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	h.withPrincipal(w, r, func(p access.Principal) (any, int, error) {
		notifications, err := h.service.List(r.Context(), p)
		if err != nil {
			return nil, 0, err
		}
		return map[string]any{"notifications": notifications}, http.StatusOK, nil
	})
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	h.withPrincipal(w, r, func(p access.Principal) (any, int, error) {
		count, err := h.service.UnreadCount(r.Context(), p)
		if err != nil {
			return nil, 0, err
		}
		return map[string]any{"unread": count}, http.StatusOK, nil
	})
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.withPrincipal(w, r, func(p access.Principal) (any, int, error) {
		count, err := h.service.MarkAllRead(r.Context(), p)
		if err != nil {
			return nil, 0, err
		}
		return map[string]any{"updated": count}, http.StatusOK, nil
	})
}

func (h *Handler) handleSetRead(w http.ResponseWriter, r *http.Request) {
	h.withPrincipal(w, r, func(p access.Principal) (any, int, error) {
		id, err := domain.ParseNotificationID(chi.URLParam(r, "notificationID"))
		if err != nil {
			return nil, 0, err
		}
		var req struct {
			Read bool `json:"read"`
		}
		if err := shared.Decode(r, &req); err != nil {
			return nil, 0, err
		}
		if err := h.service.SetRead(r.Context(), p, id, req.Read); err != nil {
			return nil, 0, err
		}
		return nil, http.StatusNoContent, nil
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	h.withPrincipal(w, r, func(p access.Principal) (any, int, error) {
		id, err := domain.ParseNotificationID(chi.URLParam(r, "notificationID"))
		if err != nil {
			return nil, 0, err
		}
		if err := h.service.Delete(r.Context(), p, id); err != nil {
			return nil, 0, err
		}
		return nil, http.StatusNoContent, nil
	})
}

func (h *Handler) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	h.withPrincipal(w, r, func(p access.Principal) (any, int, error) {
		prefs, err := h.service.Preferences(r.Context(), p)
		if err != nil {
			return nil, 0, err
		}
		return prefs, http.StatusOK, nil
	})
}

func (h *Handler) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	h.withPrincipal(w, r, func(p access.Principal) (any, int, error) {
		var prefs models.Preferences
		if err := shared.Decode(r, &prefs); err != nil {
			return nil, 0, err
		}
		updated, err := h.service.UpdatePreferences(r.Context(), p, prefs)
		if err != nil {
			return nil, 0, err
		}
		return updated, http.StatusOK, nil
	})
}

func (h *Handler) withPrincipal(w http.ResponseWriter, r *http.Request, fn func(access.Principal) (any, int, error)) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	body, status, err := fn(p)
	if err != nil {
		h.logError(r, "notification operation failed", err)
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
