package weather

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider abstracts the external weather data source. Fetch returns the
// provider payload untouched so the gateway can relay it verbatim.
type Provider interface {
	Name() string
	Configured() bool
	Fetch(ctx context.Context, q Query) (json.RawMessage, error)
}

// StatusError reports a non-2xx answer from the provider.
type StatusError struct {
	Provider string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Provider, e.Code)
}
