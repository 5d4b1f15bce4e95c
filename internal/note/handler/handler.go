// Package handler wires the meeting note endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vowline/internal/access"
	"vowline/internal/note/service"
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
	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Route("/{noteID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Delete("/", h.handleDelete)
		})
	})
}

type noteRequest struct {
	ClientProfileID string     `json:"client_profile_id"`
	Title           string     `json:"title"`
	Body            string     `json:"body"`
	MeetingDate     *time.Time `json:"meeting_date"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	notes, err := h.service.List(r.Context(), p)
	if err != nil {
		h.logError(r, "failed to list notes", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	var req noteRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	profileID, err := domain.ParseClientProfileID(req.ClientProfileID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	note, err := h.service.Create(r.Context(), p, service.NoteInput{
		ClientProfileID: profileID,
		Title:           req.Title,
		Body:            req.Body,
		MeetingDate:     req.MeetingDate,
	})
	if err != nil {
		h.logError(r, "failed to create note", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, note)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.withNoteID(w, r, func(p access.Principal, id domain.NoteID) (any, int, error) {
		note, err := h.service.Get(r.Context(), p, id)
		if err != nil {
			return nil, 0, err
		}
		return note, http.StatusOK, nil
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	h.withNoteID(w, r, func(p access.Principal, id domain.NoteID) (any, int, error) {
		var req noteRequest
		if err := shared.Decode(r, &req); err != nil {
			return nil, 0, err
		}
		note, err := h.service.Update(r.Context(), p, id, service.NoteInput{
			Title:       req.Title,
			Body:        req.Body,
			MeetingDate: req.MeetingDate,
		})
		if err != nil {
			return nil, 0, err
		}
		return note, http.StatusOK, nil
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	h.withNoteID(w, r, func(p access.Principal, id domain.NoteID) (any, int, error) {
		if err := h.service.Delete(r.Context(), p, id); err != nil {
			return nil, 0, err
		}
		return nil, http.StatusNoContent, nil
	})
}

func (h *Handler) withNoteID(w http.ResponseWriter, r *http.Request, fn func(access.Principal, domain.NoteID) (any, int, error)) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	id, err := domain.ParseNoteID(chi.URLParam(r, "noteID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	body, status, err := fn(p, id)
	if err != nil {
		h.logError(r, "note operation failed", err)
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
