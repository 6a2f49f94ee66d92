// Package ui holds the frontend session: the display state machine, the
// search controller and location acquisition, all driven from one event loop
// and projected onto a View.
package ui

import (
	"fmt"
	"math"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// IconURLTemplate renders an OpenWeatherMap icon code into an image URL.
const IconURLTemplate = "https://openweathermap.org/img/wn/%s@4x.png"

// State is the visible display state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Fields are the display strings of a rendered record.
type Fields struct {
	City        string
	Temperature string
	Humidity    string
	Wind        string
	Description string
	IconURL     string
}

// Screen is everything the display area shows for one state.
// Message is set in Loading and Error; Fields only in Success.
type Screen struct {
	State   State
	Message string
	Fields  Fields
}

// View is the set of widgets a session drives. Implementations must be safe
// to call from the session goroutine while the user interacts with them.
type View interface {
	Render(Screen)

	// Input returns the current contents of the city input field.
	Input() string

	SetSearchEnabled(enabled bool)
	SetLocateBusy(busy bool)

	// ShowNotice, ShowPopup and ShowReprompt clear their widget when given "".
	ShowNotice(msg string)
	ShowPopup(msg string)
	ShowReprompt(msg string)
}

// Format converts a record into display strings.
func Format(r weather.Record) Fields {
	return Fields{
		City:        r.CityName,
		Temperature: fmt.Sprintf("%d°", int(math.Round(r.TemperatureC))),
		Humidity:    fmt.Sprintf("%d%%", r.HumidityPct),
		Wind:        fmt.Sprintf("%d Km/h", int(math.Round(r.WindSpeedKmh))),
		Description: r.Description,
		IconURL:     fmt.Sprintf(IconURLTemplate, r.IconCode),
	}
}
