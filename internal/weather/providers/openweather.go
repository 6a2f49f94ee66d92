package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/metrics"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultOpenWeatherURL is the current-weather endpoint of OpenWeatherMap.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// maxPayloadBytes bounds how much of a provider answer is relayed.
const maxPayloadBytes = 1 << 20

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider builds a provider. An empty baseURL selects DefaultOpenWeatherURL.
func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}

	cfg := HTTPClientConfig{
		Client: client,
		Breaker: BreakerConfig{
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		},
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newBreaker("openweather", cfg.Breaker),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Configured() bool {
	return p.apiKey != ""
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, q weather.Query) (json.RawMessage, error) {
	if !p.Configured() {
		return nil, weather.ErrMissingCredential
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	switch q.Kind {
	case weather.ByCoordinates:
		values.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(q.Lon, 'f', -1, 64))
	default:
		values.Set("q", q.City)
	}

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := doRequest(ctx, p.httpCfg, p.circuit, req)
	metrics.ObserveProvider(p.name, start)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The body may echo the key back; it is never relayed.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadBytes))
		return nil, &weather.StatusError{Provider: p.name, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", p.name, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s returned a non-JSON body", p.name)
	}

	return json.RawMessage(body), nil
}
