package geo

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// Resolver produces a position once permission is granted.
type Resolver interface {
	Resolve(ctx context.Context) (Position, error)
}

// FixedResolver always resolves to the same position.
type FixedResolver Position

func (r FixedResolver) Resolve(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return Position(r), nil
}

// GeoIPResolver looks an address up in a MaxMind GeoIP2/GeoLite2 city database.
type GeoIPResolver struct {
	DatabasePath string
	Address      string
}

func (r GeoIPResolver) Resolve(ctx context.Context) (Position, error) {
	ip := net.ParseIP(r.Address)
	if ip == nil {
		return Position{}, fmt.Errorf("%w: invalid address %q", ErrUnavailable, r.Address)
	}

	db, err := geoip2.Open(r.DatabasePath)
	if err != nil {
		return Position{}, fmt.Errorf("%w: open geoip database: %v", ErrUnavailable, err)
	}
	defer db.Close()

	record, err := db.City(ip)
	if err != nil {
		return Position{}, fmt.Errorf("%w: geoip lookup: %v", ErrUnavailable, err)
	}
	if record.Location.Latitude == 0 && record.Location.Longitude == 0 {
		return Position{}, fmt.Errorf("%w: no coordinates for %s", ErrUnavailable, r.Address)
	}
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}

	return Position{Lat: record.Location.Latitude, Lon: record.Location.Longitude}, nil
}

// Device is the terminal's geolocation platform. Its permission is set by
// the user at runtime; a request made while the permission is undecided
// waits for the decision, the way a browser's native prompt does.
type Device struct {
	mu        sync.Mutex
	perm      Permission
	queryable bool
	resolver  Resolver
	decided   chan struct{}
	changes   chan Permission
}

// NewDevice creates a Device. A nil resolver makes geolocation unsupported.
func NewDevice(perm Permission, queryable bool, resolver Resolver) *Device {
	d := &Device{
		perm:      perm,
		queryable: queryable,
		resolver:  resolver,
		decided:   make(chan struct{}),
	}
	if queryable {
		d.changes = make(chan Permission, 8)
	}
	return d
}

func (d *Device) Supported() bool {
	return d.resolver != nil
}

func (d *Device) QueryPermission(ctx context.Context) (Permission, bool) {
	if !d.queryable {
		return PermissionUnknown, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.perm, true
}

func (d *Device) Changes() <-chan Permission {
	if d.changes == nil {
		return nil
	}
	return d.changes
}

// SetPermission records the user's decision and notifies listeners.
func (d *Device) SetPermission(p Permission) {
	d.mu.Lock()
	if d.perm == p {
		d.mu.Unlock()
		return
	}
	d.perm = p
	close(d.decided)
	d.decided = make(chan struct{})
	d.mu.Unlock()

	if d.changes == nil {
		return
	}
	select {
	case d.changes <- p:
	default:
		log.Printf("geo: permission change to %s dropped, listener is not keeping up", p)
	}
}

func (d *Device) RequestPosition(ctx context.Context, opts Options) (Position, error) {
	if d.resolver == nil {
		return Position{}, ErrUnsupported
	}

	for {
		d.mu.Lock()
		perm, wait := d.perm, d.decided
		d.mu.Unlock()

		switch perm {
		case PermissionGranted:
			return d.resolver.Resolve(ctx)
		case PermissionDenied:
			return Position{}, ErrPermissionDenied
		}

		select {
		case <-ctx.Done():
			return Position{}, ctx.Err()
		case <-wait:
		}
	}
}

// NewResolver picks the configured position source, or nil when none is set.
func NewResolver(fixed *[2]float64, geoipDB, geoipAddr string) Resolver {
	switch {
	case fixed != nil:
		return FixedResolver{Lat: fixed[0], Lon: fixed[1]}
	case geoipDB != "" && geoipAddr != "":
		return GeoIPResolver{DatabasePath: geoipDB, Address: geoipAddr}
	default:
		return nil
	}
}
