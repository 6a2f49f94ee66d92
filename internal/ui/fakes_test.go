package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

type fakeView struct {
	mu            sync.Mutex
	screens       []Screen
	input         string
	searchEnabled bool
	locateBusy    []bool
	notice        string
	popup         string
	reprompt      string
}

func newFakeView() *fakeView {
	return &fakeView{searchEnabled: true}
}

func (v *fakeView) Render(s Screen) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.screens = append(v.screens, s)
}

func (v *fakeView) Input() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input
}

func (v *fakeView) SetSearchEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.searchEnabled = enabled
}

func (v *fakeView) SetLocateBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.locateBusy = append(v.locateBusy, busy)
}

func (v *fakeView) ShowNotice(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = msg
}

func (v *fakeView) ShowPopup(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.popup = msg
}

func (v *fakeView) ShowReprompt(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reprompt = msg
}

func (v *fakeView) setInput(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input = s
}

func (v *fakeView) lastScreen() Screen {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.screens) == 0 {
		return Screen{}
	}
	return v.screens[len(v.screens)-1]
}

func (v *fakeView) screenCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.screens)
}

type viewSnapshot struct {
	searchEnabled bool
	locateBusy    []bool
	notice        string
	popup         string
	reprompt      string
}

func (v *fakeView) get() viewSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return viewSnapshot{
		searchEnabled: v.searchEnabled,
		locateBusy:    append([]bool(nil), v.locateBusy...),
		notice:        v.notice,
		popup:         v.popup,
		reprompt:      v.reprompt,
	}
}

func payload(city string) string {
	return fmt.Sprintf(`{"name":%q,"main":{"temp":31.4,"humidity":55},"wind":{"speed":3.2},"weather":[{"description":"clear sky","icon":"01d"}]}`, city)
}

type fakeResponse struct {
	body string
	err  error
}

type fakeGateway struct {
	mu       sync.Mutex
	cities   map[string]fakeResponse
	coords   fakeResponse
	gates    map[string]chan struct{}
	calls    []string
	finished int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		cities: map[string]fakeResponse{},
		gates:  map[string]chan struct{}{},
		coords: fakeResponse{body: payload("Osu")},
	}
}

func (g *fakeGateway) respond(city string, r fakeResponse) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cities[city] = r
}

// hold makes lookups for key block until the returned func is called.
func (g *fakeGateway) hold(key string) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[key] = ch
	return func() { close(ch) }
}

func (g *fakeGateway) FetchByCity(ctx context.Context, city string) (json.RawMessage, error) {
	return g.lookup(ctx, city, func() fakeResponse {
		if r, ok := g.cities[city]; ok {
			return r
		}
		return fakeResponse{err: weather.NewGatewayError(weather.KindNotFound, nil)}
	})
}

func (g *fakeGateway) FetchByCoordinates(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	return g.lookup(ctx, "coords", func() fakeResponse { return g.coords })
}

func (g *fakeGateway) lookup(ctx context.Context, key string, pick func() fakeResponse) (json.RawMessage, error) {
	g.mu.Lock()
	g.calls = append(g.calls, key)
	gate := g.gates[key]
	delete(g.gates, key)
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.finished++
	r := pick()
	if r.err != nil {
		return nil, r.err
	}
	return json.RawMessage(r.body), nil
}

func (g *fakeGateway) callList() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) finishedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finished
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
