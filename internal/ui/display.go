package ui

import (
	"errors"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// ErrNotLoading is returned when a record arrives while nothing is loading.
var ErrNotLoading = errors.New("display is not loading")

// Display owns the visible state. Every transition re-renders the View, so
// the widgets are always a projection of the current Screen.
type Display struct {
	view   View
	screen Screen
}

// NewDisplay creates a Display in the Idle state.
func NewDisplay(view View) *Display {
	return &Display{view: view}
}

func (d *Display) State() State {
	return d.screen.State
}

func (d *Display) Screen() Screen {
	return d.screen
}

// ShowLoading enters Loading from any state.
func (d *Display) ShowLoading(message string) {
	d.set(Screen{State: StateLoading, Message: message})
}

// ShowWeather enters Success. Only a complete record is accepted, and only
// while loading.
func (d *Display) ShowWeather(r weather.Record) error {
	if !r.Complete() {
		return weather.ErrIncompleteRecord
	}
	if d.screen.State != StateLoading {
		return ErrNotLoading
	}
	d.set(Screen{State: StateSuccess, Fields: Format(r)})
	return nil
}

// ShowError enters Error from any state.
func (d *Display) ShowError(message string) {
	d.set(Screen{State: StateError, Message: message})
}

// HideAll returns to Idle.
func (d *Display) HideAll() {
	d.set(Screen{State: StateIdle})
}

func (d *Display) set(s Screen) {
	d.screen = s
	d.view.Render(s)
}
