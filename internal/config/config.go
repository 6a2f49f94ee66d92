package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig configures the weather gateway server.
type AppConfig struct {
	// WeatherAPIKey is the provider credential. Empty is allowed: the server
	// still starts and every lookup answers with a configuration error.
	WeatherAPIKey  string
	WeatherBaseURL string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	StaticDir string
	Port      string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	loadDotenv()
	cfg := &AppConfig{}

	cfg.WeatherAPIKey = getenvDefault("WEATHER_API_KEY", os.Getenv("OPENWEATHER_API_KEY"))
	cfg.WeatherBaseURL = os.Getenv("WEATHER_API_BASE_URL")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.StaticDir = getenvDefault("STATIC_DIR", "public")
	cfg.Port = getenvDefault("PORT", "3015")

	return cfg, nil
}

// ClientConfig configures the terminal frontend.
type ClientConfig struct {
	GatewayURL  string
	DefaultCity string

	RepromptInterval time.Duration
	GeoTimeout       time.Duration

	// Permission is the initial location permission: prompt, granted, denied or unknown.
	Permission string
	// PermissionQuery is false to emulate a platform without permission queries.
	PermissionQuery bool

	// Position sources, tried in order: fixed coordinates, then GeoIP.
	FixedPosition *[2]float64
	GeoIPDatabase string
	GeoIPAddress  string

	// LogFile receives log output while the terminal UI owns the screen.
	LogFile string
}

// LoadClient reads the terminal frontend configuration.
func LoadClient() (*ClientConfig, error) {
	loadDotenv()
	cfg := &ClientConfig{}

	cfg.GatewayURL = strings.TrimRight(getenvDefault("GATEWAY_URL", "http://localhost:3015"), "/")
	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", "Accra")

	interval, err := getenvDuration("REPROMPT_INTERVAL", "20s")
	if err != nil {
		return nil, err
	}
	cfg.RepromptInterval = interval

	geoTimeout, err := getenvDuration("GEO_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.GeoTimeout = geoTimeout

	cfg.Permission = strings.ToLower(getenvDefault("LOCATION_PERMISSION", "prompt"))
	switch cfg.Permission {
	case "prompt", "granted", "denied", "unknown":
	default:
		return nil, fmt.Errorf("invalid LOCATION_PERMISSION %q", cfg.Permission)
	}
	cfg.PermissionQuery = getenvBool("LOCATION_QUERY", true)

	if v := os.Getenv("LOCATION_LATLON"); v != "" {
		pos, err := parseLatLon(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOCATION_LATLON: %w", err)
		}
		cfg.FixedPosition = &pos
	}
	cfg.GeoIPDatabase = os.Getenv("GEOIP_DB")
	cfg.GeoIPAddress = os.Getenv("GEOIP_ADDR")
	cfg.LogFile = getenvDefault("TUI_LOG_FILE", "weather-tui.log")

	return cfg, nil
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
}

func parseLatLon(s string) ([2]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]float64{}, fmt.Errorf("expected \"lat,lon\", got %q", s)
	}
	var out [2]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [2]float64{}, err
		}
		out[i] = f
	}
	if out[0] < -90 || out[0] > 90 || out[1] < -180 || out[1] > 180 {
		return [2]float64{}, fmt.Errorf("coordinates out of range: %q", s)
	}
	return out, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
