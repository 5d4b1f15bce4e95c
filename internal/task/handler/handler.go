// Package handler wires the task and comment endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vowline/internal/access"
	"vowline/internal/task/models"
	"vowline/internal/task/service"
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
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.handleListTasks)
		r.Post("/", h.handleCreateTask)
		r.Route("/{taskID}", func(r chi.Router) {
			r.Get("/", h.handleGetTask)
			r.Put("/", h.handleUpdateTask)
			r.Delete("/", h.handleDeleteTask)
			r.Get("/comments", h.handleListComments)
			r.Post("/comments", h.handleCreateComment)
		})
	})
	r.Route("/comments/{commentID}", func(r chi.Router) {
		r.Put("/", h.handleUpdateComment)
		r.Delete("/", h.handleDeleteComment)
	})
}

type taskRequest struct {
	ClientProfileID string     `json:"client_profile_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	DueDate         *time.Time `json:"due_date"`
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	tasks, err := h.service.ListTasks(r.Context(), p)
	if err != nil {
		h.logError(r, "failed to list tasks", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	var req taskRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	profileID, err := domain.ParseClientProfileID(req.ClientProfileID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	task, err := h.service.CreateTask(r.Context(), p, service.CreateTaskInput{
		ClientProfileID: profileID,
		Title:           req.Title,
		Description:     req.Description,
		DueDate:         req.DueDate,
	})
	if err != nil {
		h.logError(r, "failed to create task", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, task)
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	h.withTaskID(w, r, func(p access.Principal, id domain.TaskID) (any, int, error) {
		task, err := h.service.GetTask(r.Context(), p, id)
		if err != nil {
			return nil, 0, err
		}
		return task, http.StatusOK, nil
	})
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	h.withTaskID(w, r, func(p access.Principal, id domain.TaskID) (any, int, error) {
		var req taskRequest
		if err := shared.Decode(r, &req); err != nil {
			return nil, 0, err
		}
		task, err := h.service.UpdateTask(r.Context(), p, id, service.UpdateTaskInput{
			Title:       req.Title,
			Description: req.Description,
			Status:      taskStatus(req.Status),
			DueDate:     req.DueDate,
		})
		if err != nil {
			return nil, 0, err
		}
		return task, http.StatusOK, nil
	})
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	h.withTaskID(w, r, func(p access.Principal, id domain.TaskID) (any, int, error) {
		if err := h.service.DeleteTask(r.Context(), p, id); err != nil {
			return nil, 0, err
		}
		return nil, http.StatusNoContent, nil
	})
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	h.withTaskID(w, r, func(p access.Principal, id domain.TaskID) (any, int, error) {
		comments, err := h.service.ListComments(r.Context(), p, id)
		if err != nil {
			return nil, 0, err
		}
		return map[string]any{"comments": comments}, http.StatusOK, nil
	})
}

func (h *Handler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	h.withTaskID(w, r, func(p access.Principal, id domain.TaskID) (any, int, error) {
		var req struct {
			Body string `json:"body"`
		}
		if err := shared.Decode(r, &req); err != nil {
			return nil, 0, err
		}
		comment, err := h.service.CreateComment(r.Context(), p, id, req.Body)
		if err != nil {
			return nil, 0, err
		}
		return comment, http.StatusCreated, nil
	})
}

func (h *Handler) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	h.withCommentID(w, r, func(p access.Principal, id domain.CommentID) (any, int, error) {
		var req struct {
			Body string `json:"body"`
		}
		if err := shared.Decode(r, &req); err != nil {
			return nil, 0, err
		}
		comment, err := h.service.UpdateComment(r.Context(), p, id, req.Body)
		if err != nil {
			return nil, 0, err
		}
		return comment, http.StatusOK, nil
	})
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	h.withCommentID(w, r, func(p access.Principal, id domain.CommentID) (any, int, error) {
		if err := h.service.DeleteComment(r.Context(), p, id); err != nil {
			return nil, 0, err
		}
		return nil, http.StatusNoContent, nil
	})
}

func (h *Handler) withTaskID(w http.ResponseWriter, r *http.Request, fn func(access.Principal, domain.TaskID) (any, int, error)) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	id, err := domain.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	body, status, err := fn(p, id)
	if err != nil {
		h.logError(r, "task operation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, status, body)
}

func (h *Handler) withCommentID(w http.ResponseWriter, r *http.Request, fn func(access.Principal, domain.CommentID) (any, int, error)) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	id, err := domain.ParseCommentID(chi.URLParam(r, "commentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	body, status, err := fn(p, id)
	if err != nil {
		h.logError(r, "comment operation failed", err)
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

// taskStatus tolerates an omitted status by defaulting to todo; unknown
// values pass through and fail validation in the service.
func taskStatus(s string) models.TaskStatus {
	if s == "" {
		return models.TaskStatusTodo
	}
	return models.TaskStatus(s)
}
