// Package client is the frontend's access to the weather gateway endpoints.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// Gateway calls /weather and /weather-coords and turns {error} answers back
// into *weather.GatewayError values.
type Gateway struct {
	baseURL string
	http    *http.Client
}

// New creates a Gateway for the server at baseURL. The client has no timeout
// of its own; requests rely on the platform defaults and the caller's context.
func New(baseURL string, httpClient *http.Client) *Gateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Gateway{baseURL: baseURL, http: httpClient}
}

func (g *Gateway) FetchByCity(ctx context.Context, city string) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("city", city)
	return g.get(ctx, "/weather", values)
}

func (g *Gateway) FetchByCoordinates(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return g.get(ctx, "/weather-coords", values)
}

func (g *Gateway) get(ctx context.Context, path string, values url.Values) (json.RawMessage, error) {
	u := fmt.Sprintf("%s%s?%s", g.baseURL, path, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, weather.NewGatewayError(weather.KindUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		log.Printf("ERROR: gateway request %s failed: %v", path, err)
		return nil, weather.NewGatewayError(weather.KindUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, weather.NewGatewayError(weather.KindUpstream, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return json.RawMessage(body), nil
	}
	return nil, decodeError(resp.StatusCode, body)
}

func decodeError(status int, body []byte) *weather.GatewayError {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Error
	if msg == "" {
		msg = fmt.Sprintf("Server responded with status: %d", status)
	}

	kind := weather.KindUpstream
	switch status {
	case http.StatusBadRequest:
		kind = weather.KindValidation
	case http.StatusUnauthorized:
		kind = weather.KindAuth
	case http.StatusNotFound:
		kind = weather.KindNotFound
	case http.StatusInternalServerError:
		if common.HasAny(msg, "configuration") {
			kind = weather.KindConfig
		}
	}

	return &weather.GatewayError{
		Kind:    kind,
		Message: msg,
		Err:     fmt.Errorf("gateway status %d", status),
	}
}
