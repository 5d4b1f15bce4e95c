package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vowline/internal/access"
	clientmodels "vowline/internal/client/models"
	clientstore "vowline/internal/client/store"
	"vowline/internal/task/models"
	"vowline/internal/task/service"
	"vowline/internal/task/store"
	"vowline/pkg/domain"
)

type fixture struct {
	clients *clientstore.InMemory
	handler *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clients := clientstore.NewInMemory()
	svc := service.New(store.NewInMemory(), clients)
	return &fixture{
		clients: clients,
		handler: New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

func (f *fixture) router(p access.Principal) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(access.WithPrincipal(req.Context(), p)))
		})
	})
	f.handler.Register(r)
	return r
}

func (f *fixture) seedProfile(t *testing.T, tenantID domain.TenantID) *clientmodels.ClientProfile {
	t.Helper()
	profile, err := clientmodels.NewClientProfile(
		domain.ClientProfileID(uuid.New()), tenantID, "Avery", "Morgan", time.Now())
	require.NoError(t, err)
	require.NoError(t, f.clients.CreateProfile(context.Background(), profile))
	return profile
}

func planner(tenantID domain.TenantID) access.Principal {
	return access.Principal{UserID: domain.UserID(uuid.New()), Role: access.RoleTenant, TenantID: tenantID, Active: true}
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTaskRoutes(t *testing.T) {
	owner := domain.TenantID(uuid.New())

	t.Run("create then list", func(t *testing.T) {
		f := newFixture(t)
		profile := f.seedProfile(t, owner)
		router := f.router(planner(owner))

		rec := do(t, router, http.MethodPost, "/tasks/", map[string]string{
			"client_profile_id": profile.ID.String(),
			"title":             "Book the venue",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		var created models.Task
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
		assert.Equal(t, models.TaskStatusTodo, created.Status)

		rec = do(t, router, http.MethodGet, "/tasks/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Tasks []*models.Task `json:"tasks"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Tasks, 1)
	})

	t.Run("malformed profile id is a client error", func(t *testing.T) {
		f := newFixture(t)
		rec := do(t, f.router(planner(owner)), http.MethodPost, "/tasks/", map[string]string{
			"client_profile_id": "not-a-uuid",
			"title":             "Book the venue",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown profile is not found", func(t *testing.T) {
		f := newFixture(t)
		rec := do(t, f.router(planner(owner)), http.MethodPost, "/tasks/", map[string]string{
			"client_profile_id": uuid.NewString(),
			"title":             "Book the venue",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed task id is a client error", func(t *testing.T) {
		f := newFixture(t)
		rec := do(t, f.router(planner(owner)), http.MethodGet, "/tasks/not-a-uuid/", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCommentRoutes(t *testing.T) {
	owner := domain.TenantID(uuid.New())

	f := newFixture(t)
	profile := f.seedProfile(t, owner)
	router := f.router(planner(owner))

	rec := do(t, router, http.MethodPost, "/tasks/", map[string]string{
		"client_profile_id": profile.ID.String(),
		"title":             "Book the venue",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var task models.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))

	t.Run("comment lands on the thread with tenant columns", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/tasks/"+task.ID.String()+"/comments", map[string]string{
			"body": "Looks good",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		var comment models.Comment
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&comment))
		assert.Equal(t, owner, comment.TenantID)
		assert.Equal(t, profile.ID, comment.ClientProfileID)

		rec = do(t, router, http.MethodGet, "/tasks/"+task.ID.String()+"/comments", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Comments []*models.Comment `json:"comments"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Comments, 1)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/tasks/"+task.ID.String()+"/comments", map[string]string{
			"body": "  ",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("comment on an unknown task is not found", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/tasks/"+uuid.NewString()+"/comments", map[string]string{
			"body": "Orphan",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
