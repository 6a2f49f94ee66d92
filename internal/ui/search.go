package ui

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	msgEmptyCity    = "Please enter a city name."
	msgCityNotFound = "City not found. Please check the spelling."
	msgIncomplete   = "Incomplete weather data received."
)

// submit runs a city search. user is false when location acquisition falls
// back to the default city. It reports the fetch sequence number, or false
// when nothing was fetched.
func (s *Session) submit(city string, override, user bool) (uint64, bool) {
	// A search always silences the location reminder.
	s.prompt.Stop()
	if user {
		s.optedOut = true
		s.view.ShowReprompt("")
	}

	if !override {
		city = s.view.Input()
	}
	city = strings.TrimSpace(city)

	if city == "" {
		s.showPopup(msgEmptyCity)
		return 0, false
	}

	origin := originSearch
	if !user {
		origin = originFallback
	}

	log.Printf("DEBUG: session %s: searching for %q", s.id, city)

	s.pendingSearches++
	s.view.SetSearchEnabled(false)
	s.display.ShowLoading(fmt.Sprintf("Fetching weather for %s...", city))
	return s.startFetch(origin, weather.CityQuery(city)), true
}

// errorMessage picks the text shown for a failed lookup. City searches get a
// friendlier not-found message; everything else is shown as the gateway sent it.
func errorMessage(origin fetchOrigin, err error) string {
	var gwErr *weather.GatewayError
	if !errors.As(err, &gwErr) {
		return weather.MsgUpstream
	}
	if gwErr.Kind == weather.KindNotFound && origin != originLocation {
		return msgCityNotFound
	}
	return gwErr.Message
}

func (s *Session) showPopup(msg string) {
	s.popupGen++
	gen := s.popupGen

	s.popupVisible = true
	s.view.ShowPopup(msg)

	if s.popupTimer != nil {
		s.popupTimer.Stop()
	}
	s.popupTimer = time.AfterFunc(s.opts.PopupTimeout, func() {
		s.post(popupExpiredMsg{gen: gen})
	})
}

// hidePopup dismisses the popup. A non-zero gen only dismisses the popup
// that armed that expiry.
func (s *Session) hidePopup(gen uint64) {
	if !s.popupVisible || (gen != 0 && gen != s.popupGen) {
		return
	}
	s.popupVisible = false
	if s.popupTimer != nil {
		s.popupTimer.Stop()
		s.popupTimer = nil
	}
	s.view.ShowPopup("")
}
