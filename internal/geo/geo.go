// Package geo models the platform geolocation capability: a permission
// subsystem, one-shot position requests, and permission change events.
package geo

import (
	"context"
	"errors"
	"time"
)

// Permission mirrors the platform's location permission state.
type Permission int

const (
	PermissionUnknown Permission = iota
	PermissionPrompt
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionPrompt:
		return "prompt"
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// ParsePermission converts a config value into a Permission.
func ParsePermission(s string) Permission {
	switch s {
	case "prompt":
		return PermissionPrompt
	case "granted":
		return PermissionGranted
	case "denied":
		return PermissionDenied
	default:
		return PermissionUnknown
	}
}

// Position is a resolved fix.
type Position struct {
	Lat float64
	Lon float64
}

// Options tune a one-shot position request.
type Options struct {
	Timeout      time.Duration
	HighAccuracy bool
}

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrTimeout          = errors.New("location request timed out")
	ErrUnavailable      = errors.New("location unavailable")
	ErrUnsupported      = errors.New("geolocation is not supported")
)

// Platform is the geolocation capability a session consumes.
type Platform interface {
	// Supported reports whether positions can be requested at all.
	Supported() bool

	// QueryPermission returns the current state. ok is false when the
	// platform has no way to query permissions.
	QueryPermission(ctx context.Context) (p Permission, ok bool)

	// RequestPosition blocks until a fix, a failure, or the timeout.
	RequestPosition(ctx context.Context, opts Options) (Position, error)

	// Changes delivers permission changes. It may return nil.
	Changes() <-chan Permission
}

// EventKind tags an Event.
type EventKind int

const (
	EventFix EventKind = iota
	EventFailure
	EventPermissionChanged
)

// Event is the asynchronous result of geolocation activity.
type Event struct {
	Kind       EventKind
	Position   Position
	Reason     error
	Permission Permission
}

// FixEvent wraps a successful position.
func FixEvent(p Position) Event { return Event{Kind: EventFix, Position: p} }

// FailureEvent wraps a failed request.
func FailureEvent(reason error) Event { return Event{Kind: EventFailure, Reason: reason} }

// PermissionEvent wraps a permission change.
func PermissionEvent(p Permission) Event { return Event{Kind: EventPermissionChanged, Permission: p} }

// Request runs a one-shot position request and reports it as an Event.
func Request(ctx context.Context, platform Platform, opts Options) Event {
	if platform == nil || !platform.Supported() {
		return FailureEvent(ErrUnsupported)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	pos, err := platform.RequestPosition(ctx, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrTimeout
		}
		return FailureEvent(err)
	}
	return FixEvent(pos)
}
