package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vowline/pkg/domain-errors"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteError(t *testing.T) {
	t.Run("client errors keep their message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.New(dErrors.CodeInvalidInput, "tenant name is required"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		resp := decodeEnvelope(t, rec)
		assert.Equal(t, string(dErrors.CodeInvalidInput), resp.Error)
		assert.Equal(t, "tenant name is required", resp.Message)
	})

	t.Run("status follows the code", func(t *testing.T) {
		cases := map[dErrors.Code]int{
			dErrors.CodeUnauthorized: http.StatusUnauthorized,
			dErrors.CodeForbidden:    http.StatusForbidden,
			dErrors.CodeNotFound:     http.StatusNotFound,
			dErrors.CodeConflict:     http.StatusConflict,
		}
		for code, want := range cases {
			rec := httptest.NewRecorder()
			WriteError(rec, dErrors.New(code, "denied"))
			assert.Equal(t, want, rec.Code, string(code))
		}
	})

	t.Run("internal details never leak", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "failed to load tenant"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.Equal(t, "internal error", resp.Message)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})

	t.Run("uncoded errors map to 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Rosewood Weddings"}`))
		var p payload
		require.NoError(t, Decode(r, &p))
		assert.Equal(t, "Rosewood Weddings", p.Name)
	})

	t.Run("empty body required", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var p payload
		err := Decode(r, &p)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		var p payload
		err := Decode(r, &p)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("nil body writes only the status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteJSON(rec, http.StatusNoContent, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}
