package ui

import (
	"fmt"
	"log"

	"github.com/i474232898/weather-lookup/internal/geo"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	msgLocating = "Fetching weather for your location..."
	msgReprompt = "Enable location access to see the weather where you are."
)

func defaultLocationNotice(city string) string {
	return fmt.Sprintf("Using default location (%s). Enable location access for local weather.", city)
}

// locate resolves a usable location: a fix from the platform, or the
// default city when the platform cannot provide one.
func (s *Session) locate() {
	if s.platform == nil || !s.platform.Supported() {
		s.onPositionFailure(geo.ErrUnsupported)
		return
	}

	perm, ok := s.platform.QueryPermission(s.ctx)
	if !ok {
		// Best effort: no permission query means no reminder loop either.
		s.requestPosition()
		return
	}
	s.permission = perm
	log.Printf("DEBUG: session %s: location permission is %s", s.id, perm)

	if perm == geo.PermissionGranted {
		s.prompt.Stop()
		s.requestPosition()
		return
	}

	// Still ask, so an undecided platform gets its native prompt.
	s.requestPosition()
	s.startPrompt()
}

func (s *Session) refreshLocation() {
	if s.refreshing {
		return
	}
	s.refreshing = true
	s.refreshSeq = 0
	s.fixed = false
	s.optedOut = false
	s.view.SetLocateBusy(true)
	s.locate()
}

func (s *Session) finishRefresh() {
	s.refreshing = false
	s.refreshSeq = 0
	s.view.SetLocateBusy(false)
}

// trackRefresh ties a pending refresh to the fetch that will settle it.
func (s *Session) trackRefresh(seq uint64, ok bool) {
	if !s.refreshing {
		return
	}
	if !ok {
		s.finishRefresh()
		return
	}
	s.refreshSeq = seq
}

func (s *Session) requestPosition() {
	s.locateGen++
	gen := s.locateGen
	opts := geo.Options{Timeout: s.opts.GeoTimeout, HighAccuracy: true}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.post(geoMsg{gen: gen, event: geo.Request(s.ctx, s.platform, opts)})
	}()
}

func (s *Session) startPrompt() {
	if err := s.prompt.Start(); err != nil {
		log.Printf("ERROR: session %s: start prompt timer: %v", s.id, err)
	}
}

func (s *Session) handleGeo(m geoMsg) {
	ev := m.event
	if ev.Kind == geo.EventPermissionChanged {
		s.onPermissionChanged(ev.Permission)
		return
	}

	if m.gen != s.locateGen {
		log.Printf("DEBUG: session %s: dropping superseded position result", s.id)
		return
	}

	switch ev.Kind {
	case geo.EventFix:
		s.onFix(ev.Position)
	case geo.EventFailure:
		s.onPositionFailure(ev.Reason)
	}
}

func (s *Session) onPermissionChanged(p geo.Permission) {
	log.Printf("DEBUG: session %s: location permission changed to %s", s.id, p)
	s.permission = p

	switch p {
	case geo.PermissionGranted:
		s.prompt.Stop()
		s.view.ShowReprompt("")
		s.requestPosition()
	case geo.PermissionPrompt, geo.PermissionDenied:
		if !s.fixed && !s.optedOut && !s.prompt.Active() {
			s.startPrompt()
		}
	}
}

func (s *Session) onFix(pos geo.Position) {
	log.Printf("DEBUG: session %s: position fix %.4f,%.4f", s.id, pos.Lat, pos.Lon)

	s.prompt.Stop()
	s.fixed = true
	s.view.ShowNotice("")
	s.view.ShowReprompt("")

	s.display.ShowLoading(msgLocating)
	seq := s.startFetch(originLocation, weather.CoordinatesQuery(pos.Lat, pos.Lon))
	s.trackRefresh(seq, true)
}

func (s *Session) onPositionFailure(reason error) {
	log.Printf("INFO: session %s: no position (%v), using %s", s.id, reason, s.opts.DefaultCity)

	s.view.ShowNotice(defaultLocationNotice(s.opts.DefaultCity))

	// The fallback goes through the search path, which cancels the reminder;
	// a reminder that was running is started again afterwards.
	wasActive := s.prompt.Active()
	seq, ok := s.submit(s.opts.DefaultCity, true, false)
	if wasActive {
		s.startPrompt()
	}
	s.trackRefresh(seq, ok)
}

func (s *Session) handlePromptTick() {
	if !s.prompt.Active() {
		return
	}
	if s.permission == geo.PermissionGranted {
		s.prompt.Stop()
		return
	}
	s.view.ShowReprompt(msgReprompt)
}
