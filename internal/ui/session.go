package ui

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-lookup/internal/geo"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// Gateway is the weather lookup surface a session calls. Failures should be
// *weather.GatewayError values; anything else is shown as an upstream error.
type Gateway interface {
	FetchByCity(ctx context.Context, city string) (json.RawMessage, error)
	FetchByCoordinates(ctx context.Context, lat, lon float64) (json.RawMessage, error)
}

// Options tune a session.
type Options struct {
	DefaultCity      string
	RepromptInterval time.Duration
	GeoTimeout       time.Duration
	PopupTimeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.DefaultCity == "" {
		o.DefaultCity = "Accra"
	}
	if o.RepromptInterval <= 0 {
		o.RepromptInterval = scheduler.DefaultRepromptInterval
	}
	if o.GeoTimeout <= 0 {
		o.GeoTimeout = 10 * time.Second
	}
	if o.PopupTimeout <= 0 {
		o.PopupTimeout = 3 * time.Second
	}
	return o
}

type fetchOrigin int

const (
	originSearch fetchOrigin = iota
	originFallback
	originLocation
)

type (
	startMsg        struct{}
	refreshMsg      struct{}
	dismissPopupMsg struct{}
	promptTickMsg   struct{}

	submitMsg struct {
		city     string
		override bool
	}

	popupExpiredMsg struct {
		gen uint64
	}

	fetchResultMsg struct {
		seq    uint64
		origin fetchOrigin
		body   json.RawMessage
		err    error
	}

	// geoMsg carries a geolocation event. gen ties a fix or failure to the
	// request that produced it; permission changes use gen 0.
	geoMsg struct {
		gen   uint64
		event geo.Event
	}
)

// Session is one frontend instance. All state below the loop marker is owned
// by the loop goroutine; the exported methods only post messages to it.
type Session struct {
	id       string
	opts     Options
	view     View
	gateway  Gateway
	platform geo.Platform
	display  *Display
	prompt   *scheduler.PromptTimer

	msgs      chan any
	done      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once

	// loop-owned
	fetchSeq        uint64
	pendingSearches int
	locateGen       uint64
	permission      geo.Permission
	fixed           bool
	optedOut        bool
	refreshing      bool
	refreshSeq      uint64
	popupVisible    bool
	popupGen        uint64
	popupTimer      *time.Timer
}

// New creates a session. platform may be nil when geolocation is unavailable.
func New(view View, gateway Gateway, platform geo.Platform, opts Options) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       uuid.NewString(),
		opts:     opts.withDefaults(),
		view:     view,
		gateway:  gateway,
		platform: platform,
		display:  NewDisplay(view),
		msgs:     make(chan any, 32),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.prompt = scheduler.NewPromptTimer(s.opts.RepromptInterval, func() {
		s.post(promptTickMsg{})
	})
	return s
}

// ID identifies the session in log lines.
func (s *Session) ID() string {
	return s.id
}

// Start runs the event loop and begins location acquisition.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		log.Printf("INFO: session %s starting", s.id)

		s.wg.Add(1)
		go s.run()

		if s.platform != nil {
			if changes := s.platform.Changes(); changes != nil {
				s.wg.Add(1)
				go s.forwardPermissionChanges(changes)
			}
		}

		s.post(startMsg{})
	})
}

// Stop cancels timers and in-flight work and waits for the loop to exit.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.cancel()
		s.wg.Wait()
		s.prompt.Close()
		if s.popupTimer != nil {
			s.popupTimer.Stop()
		}
		log.Printf("INFO: session %s stopped", s.id)
	})
}

// Submit searches for the city currently in the input field.
func (s *Session) Submit() {
	s.post(submitMsg{})
}

// SubmitCity searches for city, ignoring the input field.
func (s *Session) SubmitCity(city string) {
	s.post(submitMsg{city: city, override: true})
}

// RefreshLocation restarts location acquisition from scratch.
func (s *Session) RefreshLocation() {
	s.post(refreshMsg{})
}

// DismissPopup hides the validation popup, as an outside click does.
func (s *Session) DismissPopup() {
	s.post(dismissPopupMsg{})
}

func (s *Session) post(msg any) {
	select {
	case s.msgs <- msg:
	case <-s.done:
	}
}

func (s *Session) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.msgs:
			s.handle(msg)
		}
	}
}

func (s *Session) handle(msg any) {
	switch m := msg.(type) {
	case startMsg:
		s.display.HideAll()
		s.locate()
	case submitMsg:
		s.submit(m.city, m.override, true)
	case refreshMsg:
		s.refreshLocation()
	case dismissPopupMsg:
		s.hidePopup(0)
	case popupExpiredMsg:
		s.hidePopup(m.gen)
	case promptTickMsg:
		s.handlePromptTick()
	case geoMsg:
		s.handleGeo(m)
	case fetchResultMsg:
		s.handleFetchResult(m)
	default:
		log.Printf("ERROR: session %s: unexpected message %T", s.id, msg)
	}
}

func (s *Session) forwardPermissionChanges(changes <-chan geo.Permission) {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case p, ok := <-changes:
			if !ok {
				return
			}
			s.post(geoMsg{event: geo.PermissionEvent(p)})
		}
	}
}

// startFetch issues a lookup and returns its sequence number. Only the
// result of the newest fetch is rendered.
func (s *Session) startFetch(origin fetchOrigin, q weather.Query) uint64 {
	s.fetchSeq++
	seq := s.fetchSeq

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var (
			body json.RawMessage
			err  error
		)
		if q.Kind == weather.ByCoordinates {
			body, err = s.gateway.FetchByCoordinates(s.ctx, q.Lat, q.Lon)
		} else {
			body, err = s.gateway.FetchByCity(s.ctx, q.City)
		}
		s.post(fetchResultMsg{seq: seq, origin: origin, body: body, err: err})
	}()

	return seq
}

func (s *Session) handleFetchResult(m fetchResultMsg) {
	if m.origin != originLocation {
		s.pendingSearches--
		if s.pendingSearches <= 0 {
			s.pendingSearches = 0
			s.view.SetSearchEnabled(true)
		}
	}
	if s.refreshing && m.seq == s.refreshSeq {
		s.finishRefresh()
	}

	if m.seq != s.fetchSeq {
		log.Printf("DEBUG: session %s: dropping superseded result #%d (latest #%d)", s.id, m.seq, s.fetchSeq)
		return
	}

	if m.err != nil {
		log.Printf("ERROR: session %s: lookup #%d failed: %v", s.id, m.seq, m.err)
		s.display.ShowError(errorMessage(m.origin, m.err))
		return
	}

	rec, err := weather.NormalizeRecord(m.body)
	if err != nil {
		log.Printf("ERROR: session %s: lookup #%d: %v", s.id, m.seq, err)
		s.display.ShowError(msgIncomplete)
		return
	}
	if err := s.display.ShowWeather(rec); err != nil {
		log.Printf("ERROR: session %s: render #%d: %v", s.id, m.seq, err)
	}
}
