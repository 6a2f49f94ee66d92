package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/i474232898/weather-lookup/internal/metrics"
)

// Service is the weather gateway: it forwards lookups to the provider and
// translates every provider or network fault into a *GatewayError.
type Service struct {
	provider Provider
}

// NewService creates a new Service.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Configured reports whether the server-held credential is present.
func (s *Service) Configured() bool {
	return s.provider != nil && s.provider.Configured()
}

// FetchByCity looks up current weather by city name. city must be non-empty.
func (s *Service) FetchByCity(ctx context.Context, city string) (json.RawMessage, error) {
	return s.fetch(ctx, CityQuery(city))
}

// FetchByCoordinates looks up current weather at lat/lon.
func (s *Service) FetchByCoordinates(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	return s.fetch(ctx, CoordinatesQuery(lat, lon))
}

func (s *Service) fetch(ctx context.Context, q Query) (json.RawMessage, error) {
	if !s.Configured() {
		log.Printf("ERROR: weather lookup %s rejected: %v", q, ErrMissingCredential)
		metrics.RecordLookup(q.Kind.String(), KindConfig.String())
		return nil, NewGatewayError(KindConfig, ErrMissingCredential)
	}

	log.Printf("DEBUG: gateway received request for %s", q)

	body, err := s.provider.Fetch(ctx, q)
	if err != nil {
		gwErr := classify(q, err)
		log.Printf("ERROR: provider %s failed for %s: %v", s.provider.Name(), q, err)
		metrics.RecordLookup(q.Kind.String(), gwErr.Kind.String())
		return nil, gwErr
	}

	log.Printf("DEBUG: received data from %s for %s", s.provider.Name(), q)
	metrics.RecordLookup(q.Kind.String(), "ok")
	return body, nil
}

func classify(q Query, err error) *GatewayError {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return NewGatewayError(KindUpstream, err)
	}

	switch statusErr.Code {
	case http.StatusUnauthorized:
		return NewGatewayError(KindAuth, err)
	case http.StatusNotFound:
		gwErr := NewGatewayError(KindNotFound, err)
		if q.Kind == ByCoordinates {
			gwErr.Message = MsgCoordsNotFound
		}
		return gwErr
	default:
		return NewGatewayError(KindUpstream, fmt.Errorf("provider status: %w", err))
	}
}
