package weather

import (
	"errors"
	"net/http"
)

// ErrorKind is the client-facing classification of a failed lookup.
type ErrorKind int

const (
	KindUpstream ErrorKind = iota
	KindConfig
	KindAuth
	KindNotFound
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "upstream"
	}
}

// Status is the HTTP status the gateway answers with for this kind.
func (k ErrorKind) Status() int {
	switch k {
	case KindConfig:
		return http.StatusInternalServerError
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

const (
	MsgConfig         = "Server configuration error"
	MsgAuth           = "Invalid API Key"
	MsgCityNotFound   = "City not found"
	MsgCoordsNotFound = "Location data not found for the given coordinates"
	MsgUpstream       = "Failed to retrieve data from external weather service"
)

// GatewayError is what every failed lookup is translated into before it
// leaves the gateway. Err keeps the underlying cause for logs only.
type GatewayError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError builds a GatewayError with the default message for kind.
func NewGatewayError(kind ErrorKind, cause error) *GatewayError {
	msg := MsgUpstream
	switch kind {
	case KindConfig:
		msg = MsgConfig
	case KindAuth:
		msg = MsgAuth
	case KindNotFound:
		msg = MsgCityNotFound
	}
	return &GatewayError{Kind: kind, Message: msg, Err: cause}
}

// KindOf extracts the kind of err, treating anything unclassified as upstream.
func KindOf(err error) ErrorKind {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return KindUpstream
}

var (
	// ErrMissingCredential is returned by providers that have no API key configured.
	ErrMissingCredential = errors.New("weather provider credential is not configured")

	// ErrIncompleteRecord is returned when a payload lacks a field the UI needs.
	ErrIncompleteRecord = errors.New("incomplete weather data received")
)
