// Package handler wires the third-party passthrough endpoints. Responses are
// always 200; outages surface as empty payloads.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vowline/internal/integrations/service"
	"vowline/internal/transport/http/shared"
)

type Handler struct {
	service *service.Service
}

func New(s *service.Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/integrations", func(r chi.Router) {
		r.Get("/places/autocomplete", h.handleAutocomplete)
		r.Get("/places/details", h.handleDetails)
		r.Get("/sun", h.handleSun)
		r.Get("/payments/summary", h.handlePayments)
	})
}

func (h *Handler) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	places := h.service.AutocompletePlaces(r.Context(), r.URL.Query().Get("input"))
	shared.WriteJSON(w, http.StatusOK, map[string]any{"predictions": places})
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	details := h.service.PlaceDetails(r.Context(), r.URL.Query().Get("place_id"))
	shared.WriteJSON(w, http.StatusOK, details)
}

func (h *Handler) handleSun(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	times := h.service.SunTimes(r.Context(), q.Get("lat"), q.Get("lng"), q.Get("date"))
	shared.WriteJSON(w, http.StatusOK, times)
}

func (h *Handler) handlePayments(w http.ResponseWriter, r *http.Request) {
	summary := h.service.PaymentsSummaryFor(r.Context())
	shared.WriteJSON(w, http.StatusOK, summary)
}
