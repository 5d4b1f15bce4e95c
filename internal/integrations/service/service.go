// Package service proxies the third-party lookups the planner UI uses. The
// degrade policy is deliberate: an upstream outage returns an empty payload
// with 200, never a 5xx, because none of these lookups are load-bearing.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"vowline/internal/platform/config"
	"vowline/pkg/platform/circuit"
	"vowline/pkg/requestcontext"
)

// Place is one autocomplete prediction.
type Place struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

// PlaceDetails is the resolved venue record.
type PlaceDetails struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Phone   string  `json:"phone,omitempty"`
	Website string  `json:"website,omitempty"`
}

// SunTimes carries sunrise and sunset for a venue and date, for golden-hour
// photo planning.
type SunTimes struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

// PaymentsSummary aggregates the payment provider's charges.
type PaymentsSummary struct {
	TotalPaid   int64  `json:"total_paid"`
	Outstanding int64  `json:"outstanding"`
	Currency    string `json:"currency"`
	Count       int    `json:"count"`
}

type Service struct {
	cfg      config.UpstreamConfig
	client   *http.Client
	logger   *slog.Logger
	places   *circuit.Breaker
	sun      *circuit.Breaker
	payments *circuit.Breaker
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) { s.client = client }
}

func New(cfg config.UpstreamConfig, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   slog.Default(),
		places:   circuit.New("places", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		sun:      circuit.New("sun", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		payments: circuit.New("payments", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AutocompletePlaces suggests venues for a partial query.
func (s *Service) AutocompletePlaces(ctx context.Context, input string) []Place {
	if input == "" || s.breakerOpen(ctx, s.places) {
		return []Place{}
	}

	endpoint := s.cfg.PlacesBaseURL + "/autocomplete/json?" + url.Values{
		"input": {input},
		"key":   {s.cfg.PlacesAPIKey},
	}.Encode()

	var payload struct {
		Predictions []struct {
			Description string `json:"description"`
			PlaceID     string `json:"place_id"`
		} `json:"predictions"`
	}
	if err := s.getJSON(ctx, endpoint, "", &payload); err != nil {
		s.degrade(ctx, s.places, err)
		return []Place{}
	}
	s.places.RecordSuccess()

	out := make([]Place, 0, len(payload.Predictions))
	for _, p := range payload.Predictions {
		out = append(out, Place{Description: p.Description, PlaceID: p.PlaceID})
	}
	return out
}

// PlaceDetails resolves one place id to venue details.
func (s *Service) PlaceDetails(ctx context.Context, placeID string) PlaceDetails {
	if placeID == "" || s.breakerOpen(ctx, s.places) {
		return PlaceDetails{}
	}

	endpoint := s.cfg.PlacesBaseURL + "/details/json?" + url.Values{
		"place_id": {placeID},
		"key":      {s.cfg.PlacesAPIKey},
	}.Encode()

	var payload struct {
		Result struct {
			Name             string `json:"name"`
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
			Phone   string `json:"formatted_phone_number"`
			Website string `json:"website"`
		} `json:"result"`
	}
	if err := s.getJSON(ctx, endpoint, "", &payload); err != nil {
		s.degrade(ctx, s.places, err)
		return PlaceDetails{}
	}
	s.places.RecordSuccess()

	return PlaceDetails{
		Name:    payload.Result.Name,
		Address: payload.Result.FormattedAddress,
		Lat:     payload.Result.Geometry.Location.Lat,
		Lng:     payload.Result.Geometry.Location.Lng,
		Phone:   payload.Result.Phone,
		Website: payload.Result.Website,
	}
}

// SunTimes returns sunrise and sunset for a coordinate and date.
func (s *Service) SunTimes(ctx context.Context, lat, lng, date string) SunTimes {
	if lat == "" || lng == "" || s.breakerOpen(ctx, s.sun) {
		return SunTimes{}
	}

	values := url.Values{"lat": {lat}, "lng": {lng}, "formatted": {"0"}}
	if date != "" {
		values.Set("date", date)
	}
	endpoint := s.cfg.SunBaseURL + "/json?" + values.Encode()

	var payload struct {
		Results struct {
			Sunrise string `json:"sunrise"`
			Sunset  string `json:"sunset"`
		} `json:"results"`
		Status string `json:"status"`
	}
	if err := s.getJSON(ctx, endpoint, "", &payload); err != nil {
		s.degrade(ctx, s.sun, err)
		return SunTimes{}
	}
	if payload.Status != "OK" {
		s.degrade(ctx, s.sun, fmt.Errorf("sun api status %q", payload.Status))
		return SunTimes{}
	}
	s.sun.RecordSuccess()

	return SunTimes{Sunrise: payload.Results.Sunrise, Sunset: payload.Results.Sunset}
}

// PaymentsSummaryFor aggregates the provider's charge list for the tenant's
// connected account.
func (s *Service) PaymentsSummaryFor(ctx context.Context) PaymentsSummary {
	if s.cfg.PaymentsAPIKey == "" || s.breakerOpen(ctx, s.payments) {
		return PaymentsSummary{}
	}

	endpoint := s.cfg.PaymentsBaseURL + "/charges?limit=100"

	var payload struct {
		Data []struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Paid     bool   `json:"paid"`
		} `json:"data"`
	}
	if err := s.getJSON(ctx, endpoint, s.cfg.PaymentsAPIKey, &payload); err != nil {
		s.degrade(ctx, s.payments, err)
		return PaymentsSummary{}
	}
	s.payments.RecordSuccess()

	var summary PaymentsSummary
	for _, charge := range payload.Data {
		summary.Count++
		summary.Currency = charge.Currency
		if charge.Paid {
			summary.TotalPaid += charge.Amount
		} else {
			summary.Outstanding += charge.Amount
		}
	}
	return summary
}

func (s *Service) getJSON(ctx context.Context, endpoint, bearer string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

func (s *Service) breakerOpen(ctx context.Context, b *circuit.Breaker) bool {
	if b.IsOpen() {
		s.logger.WarnContext(ctx, "upstream breaker open, serving empty payload",
			"upstream", b.Name(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return true
	}
	return false
}

func (s *Service) degrade(ctx context.Context, b *circuit.Breaker, err error) {
	_, change := b.RecordFailure()
	s.logger.WarnContext(ctx, "upstream call failed, serving empty payload",
		"upstream", b.Name(),
		"error", err,
		"breaker_opened", change.Opened,
		"request_id", requestcontext.RequestID(ctx),
	)
}
