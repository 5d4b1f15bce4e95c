// Package shared centralizes JSON encoding and domain error translation for
// all handlers, keeping the error envelope consistent across routes.
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "vowline/pkg/domain-errors"
)

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a domain error to its HTTP status and envelope. Messages on
// 5xx responses are suppressed to a generic text so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.HTTPStatus(code), ErrorResponse{
		Error:   string(code),
		Message: dErrors.MessageOf(err),
	})
}

// Decode reads a JSON body into dst, translating failures to input errors.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
		}
		return dErrors.New(dErrors.CodeInvalidInput, "invalid request body")
	}
	return nil
}
