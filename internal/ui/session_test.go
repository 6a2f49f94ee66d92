package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-lookup/internal/geo"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var osu = geo.Position{Lat: 5.556, Lon: -0.1969}

// quietOptions keep the location reminder and geolocation out of the way.
func quietOptions() Options {
	return Options{
		DefaultCity:      "Accra",
		RepromptInterval: time.Hour,
		GeoTimeout:       time.Minute,
		PopupTimeout:     time.Hour,
	}
}

func startSession(t *testing.T, v View, gw Gateway, platform geo.Platform, opts Options) *Session {
	t.Helper()
	s := New(v, gw, platform, opts)
	t.Cleanup(s.Stop)
	s.Start()
	return s
}

// undecided is a platform whose position request waits for a decision that
// never comes, so searches can be tested in isolation.
func undecided() *geo.Device {
	return geo.NewDevice(geo.PermissionPrompt, true, geo.FixedResolver(osu))
}

func settled(v *fakeView) func() bool {
	return func() bool {
		st := v.lastScreen().State
		return (st == StateSuccess || st == StateError) && v.get().searchEnabled
	}
}

func TestSubmitSuccess(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	gw.respond("Accra", fakeResponse{body: payload("Accra")})

	s := startSession(t, v, gw, undecided(), quietOptions())
	waitFor(t, "idle screen", func() bool { return v.screenCount() == 1 })

	v.setInput("  Accra  ")
	s.Submit()
	waitFor(t, "search to settle", settled(v))

	got := v.lastScreen()
	want := Screen{State: StateSuccess, Fields: Fields{
		City:        "Accra",
		Temperature: "31°",
		Humidity:    "55%",
		Wind:        "12 Km/h",
		Description: "clear sky",
		IconURL:     "https://openweathermap.org/img/wn/01d@4x.png",
	}}
	if got != want {
		t.Fatalf("unexpected screen:\n got %+v\nwant %+v", got, want)
	}
	if calls := gw.callList(); len(calls) != 1 || calls[0] != "Accra" {
		t.Fatalf("expected one trimmed lookup, got %v", calls)
	}

	v.mu.Lock()
	loading := v.screens[1]
	v.mu.Unlock()
	if loading.State != StateLoading {
		t.Fatalf("search must pass through loading, got %+v", loading)
	}
}

func TestSubmitEmptyInputShowsPopupOnly(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	opts := quietOptions()
	opts.PopupTimeout = 50 * time.Millisecond

	s := startSession(t, v, gw, undecided(), opts)
	waitFor(t, "idle screen", func() bool { return v.screenCount() == 1 })

	v.setInput("   ")
	s.Submit()
	waitFor(t, "popup", func() bool { return v.get().popup == msgEmptyCity })
	waitFor(t, "popup auto-dismiss", func() bool { return v.get().popup == "" })

	if calls := gw.callList(); len(calls) != 0 {
		t.Fatalf("gateway must not be called, got %v", calls)
	}
	if n := v.screenCount(); n != 1 {
		t.Fatalf("display state must not change, got %d renders", n)
	}
	if !v.get().searchEnabled {
		t.Fatal("controls must stay enabled")
	}
}

func TestDismissPopup(t *testing.T) {
	v := newFakeView()
	s := startSession(t, v, newFakeGateway(), undecided(), quietOptions())

	s.Submit()
	waitFor(t, "popup", func() bool { return v.get().popup == msgEmptyCity })

	s.DismissPopup()
	waitFor(t, "popup dismissed", func() bool { return v.get().popup == "" })
}

func TestSubmitErrors(t *testing.T) {
	cases := []struct {
		name string
		resp fakeResponse
		want string
	}{
		{"not found", fakeResponse{err: weather.NewGatewayError(weather.KindNotFound, nil)}, msgCityNotFound},
		{"auth", fakeResponse{err: weather.NewGatewayError(weather.KindAuth, nil)}, weather.MsgAuth},
		{"config", fakeResponse{err: weather.NewGatewayError(weather.KindConfig, nil)}, weather.MsgConfig},
		{"custom", fakeResponse{err: &weather.GatewayError{Kind: weather.KindUpstream, Message: "Server responded with status: 502"}}, "Server responded with status: 502"},
		{"unclassified", fakeResponse{err: errors.New("socket closed")}, weather.MsgUpstream},
		{"incomplete", fakeResponse{body: `{"name":"Atlantis"}`}, msgIncomplete},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := newFakeView()
			gw := newFakeGateway()
			gw.respond("Atlantis", tc.resp)

			s := startSession(t, v, gw, undecided(), quietOptions())
			s.SubmitCity("Atlantis")
			waitFor(t, "search to settle", settled(v))

			got := v.lastScreen()
			if got.State != StateError || got.Message != tc.want {
				t.Fatalf("expected error %q, got %+v", tc.want, got)
			}
		})
	}
}

func TestNotFoundMentionsCity(t *testing.T) {
	v := newFakeView()
	s := startSession(t, v, newFakeGateway(), undecided(), quietOptions())

	s.SubmitCity("Nowhere")
	waitFor(t, "search to settle", settled(v))

	if got := v.lastScreen(); got.State != StateError || !strings.Contains(got.Message, "City not found") {
		t.Fatalf("unexpected screen %+v", got)
	}
}

func TestSupersededResultIsNotRendered(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	gw.respond("Slow", fakeResponse{body: payload("Slow")})
	gw.respond("Fast", fakeResponse{body: payload("Fast")})
	release := gw.hold("Slow")

	s := startSession(t, v, gw, undecided(), quietOptions())

	s.SubmitCity("Slow")
	waitFor(t, "slow lookup to start", func() bool { return len(gw.callList()) == 1 })
	s.SubmitCity("Fast")
	waitFor(t, "fast result", func() bool { return v.lastScreen().Fields.City == "Fast" })

	if v.get().searchEnabled {
		t.Fatal("controls stay disabled while a search is still outstanding")
	}

	release()
	waitFor(t, "slow lookup to finish", func() bool { return gw.finishedCount() == 2 })
	waitFor(t, "controls re-enabled", func() bool { return v.get().searchEnabled })

	if got := v.lastScreen(); got.Fields.City != "Fast" {
		t.Fatalf("stale result overwrote newer one: %+v", got)
	}
}

func TestSubmitCancelsPromptTimer(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	gw.respond("Accra", fakeResponse{body: payload("Accra")})

	s := startSession(t, v, gw, undecided(), quietOptions())
	waitFor(t, "prompt timer", s.prompt.Active)

	s.SubmitCity("Accra")
	waitFor(t, "search to settle", settled(v))

	if s.prompt.Active() {
		t.Fatal("manual search must cancel the prompt timer")
	}
}

func TestPromptTimerShowsReminder(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	gw.respond("Accra", fakeResponse{body: payload("Accra")})
	opts := quietOptions()
	opts.RepromptInterval = 50 * time.Millisecond

	s := startSession(t, v, gw, undecided(), opts)
	waitFor(t, "reminder", func() bool { return v.get().reprompt == msgReprompt })

	s.SubmitCity("Accra")
	waitFor(t, "reminder cleared", func() bool { return v.get().reprompt == "" && !s.prompt.Active() })
}

func TestGrantedLocationFetchesByCoordinates(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	dev := geo.NewDevice(geo.PermissionGranted, true, geo.FixedResolver(osu))

	s := startSession(t, v, gw, dev, quietOptions())
	waitFor(t, "location weather", func() bool { return v.lastScreen().State == StateSuccess })

	if got := v.lastScreen().Fields.City; got != "Osu" {
		t.Fatalf("expected coordinate lookup result, got %q", got)
	}
	if calls := gw.callList(); len(calls) != 1 || calls[0] != "coords" {
		t.Fatalf("expected a single coordinate lookup, got %v", calls)
	}
	if s.prompt.Active() {
		t.Fatal("granted permission must not start the prompt timer")
	}
	if v.get().notice != "" {
		t.Fatalf("unexpected notice %q", v.get().notice)
	}
}

func TestDeniedLocationFallsBackToDefaultCity(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	gw.respond("Accra", fakeResponse{body: payload("Accra")})
	dev := geo.NewDevice(geo.PermissionDenied, true, geo.FixedResolver(osu))

	s := startSession(t, v, gw, dev, quietOptions())
	waitFor(t, "fallback weather", settled(v))

	if calls := gw.callList(); len(calls) != 1 || calls[0] != "Accra" {
		t.Fatalf("expected default city lookup, got %v", calls)
	}
	if got := v.get().notice; got != defaultLocationNotice("Accra") {
		t.Fatalf("expected default location notice, got %q", got)
	}
	if !s.prompt.Active() {
		t.Fatal("prompt timer should be restarted after the fallback search")
	}
	if n := s.prompt.Jobs(); n != 1 {
		t.Fatalf("expected exactly one reminder job, got %d", n)
	}
}

func TestFallbackMatchesManualSearch(t *testing.T) {
	for _, resp := range []fakeResponse{
		{body: payload("Accra")},
		{err: weather.NewGatewayError(weather.KindNotFound, nil)},
		{err: weather.NewGatewayError(weather.KindAuth, nil)},
	} {
		fallbackView := newFakeView()
		gw := newFakeGateway()
		gw.respond("Accra", resp)
		denied := geo.NewDevice(geo.PermissionDenied, true, geo.FixedResolver(osu))
		fallback := New(fallbackView, gw, denied, quietOptions())
		fallback.Start()
		waitFor(t, "fallback to settle", settled(fallbackView))
		fallback.Stop()

		manualView := newFakeView()
		gw2 := newFakeGateway()
		gw2.respond("Accra", resp)
		manual := New(manualView, gw2, undecided(), quietOptions())
		manual.Start()
		manual.SubmitCity("Accra")
		waitFor(t, "manual search to settle", settled(manualView))
		manual.Stop()

		if a, b := fallbackView.lastScreen(), manualView.lastScreen(); a != b {
			t.Fatalf("fallback %+v differs from manual search %+v", a, b)
		}
	}
}

func TestUnsupportedGeolocationFallsBack(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	gw.respond("Kumasi", fakeResponse{body: payload("Kumasi")})
	opts := quietOptions()
	opts.DefaultCity = "Kumasi"

	s := startSession(t, v, gw, geo.NewDevice(geo.PermissionGranted, true, nil), opts)
	waitFor(t, "fallback weather", settled(v))

	if got := v.lastScreen().Fields.City; got != "Kumasi" {
		t.Fatalf("expected default city weather, got %+v", v.lastScreen())
	}
	if v.get().notice == "" {
		t.Fatal("expected default location notice")
	}
	if s.prompt.Active() {
		t.Fatal("no reminder loop without geolocation")
	}
}

func TestNilPlatformFallsBack(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	gw.respond("Accra", fakeResponse{body: payload("Accra")})

	startSession(t, v, gw, nil, quietOptions())
	waitFor(t, "fallback weather", settled(v))
}

func TestWithoutPermissionQueryNoReminder(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	dev := geo.NewDevice(geo.PermissionGranted, false, geo.FixedResolver(osu))

	s := startSession(t, v, gw, dev, quietOptions())
	waitFor(t, "location weather", func() bool { return v.lastScreen().State == StateSuccess })

	if s.prompt.Active() {
		t.Fatal("best-effort request must not start the reminder loop")
	}
}

func TestFixCancelsTimerAndClearsNotice(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	gw.respond("Accra", fakeResponse{body: payload("Accra")})
	dev := geo.NewDevice(geo.PermissionPrompt, true, geo.FixedResolver(osu))
	opts := quietOptions()
	opts.GeoTimeout = 50 * time.Millisecond

	s := startSession(t, v, gw, dev, opts)
	waitFor(t, "fallback after timeout", func() bool {
		return v.get().notice != "" && v.lastScreen().Fields.City == "Accra"
	})
	if !s.prompt.Active() {
		t.Fatal("prompt timer should be running while permission is undecided")
	}

	dev.SetPermission(geo.PermissionGranted)
	waitFor(t, "location weather", func() bool { return v.lastScreen().Fields.City == "Osu" })

	if s.prompt.Active() {
		t.Fatal("a fix must cancel the prompt timer")
	}
	if got := v.get().notice; got != "" {
		t.Fatalf("a fix must clear the default location notice, got %q", got)
	}
}

func TestRefreshLocationBusyUntilSettled(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	gw.respond("Accra", fakeResponse{body: payload("Accra")})
	dev := geo.NewDevice(geo.PermissionDenied, true, geo.FixedResolver(osu))

	s := startSession(t, v, gw, dev, quietOptions())
	waitFor(t, "startup fallback", settled(v))

	release := gw.hold("Accra")
	s.RefreshLocation()
	waitFor(t, "refresh lookup", func() bool { return len(gw.callList()) == 2 })

	if busy := v.get().locateBusy; len(busy) != 1 || !busy[0] {
		t.Fatalf("refresh should be busy while the lookup is outstanding, got %v", busy)
	}

	release()
	waitFor(t, "refresh to settle", func() bool {
		busy := v.get().locateBusy
		return len(busy) == 2 && !busy[1]
	})
}

func TestRefreshAfterGrantUsesCoordinates(t *testing.T) {
	v := newFakeView()
	gw := newFakeGateway()
	gw.respond("Accra", fakeResponse{body: payload("Accra")})
	dev := geo.NewDevice(geo.PermissionDenied, false, geo.FixedResolver(osu))

	s := startSession(t, v, gw, dev, quietOptions())
	waitFor(t, "startup fallback", settled(v))

	// Without permission queries there are no change events; the user has
	// to refresh after granting.
	dev.SetPermission(geo.PermissionGranted)
	s.RefreshLocation()
	waitFor(t, "location weather", func() bool { return v.lastScreen().Fields.City == "Osu" })
	waitFor(t, "refresh to settle", func() bool {
		busy := v.get().locateBusy
		return len(busy) == 2 && !busy[1]
	})
}

func TestStopIsIdempotent(t *testing.T) {
	s := New(newFakeView(), newFakeGateway(), undecided(), quietOptions())
	s.Start()
	s.Stop()
	s.Stop()

	// Actions after Stop are dropped instead of blocking.
	s.SubmitCity("Accra")
	s.RefreshLocation()
}
