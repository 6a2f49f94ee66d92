package weather

import (
	"encoding/json"
	"fmt"
	"math"
)

// openWeatherPayload mirrors the subset of the OpenWeatherMap current-weather
// response the UI consumes. Pointers distinguish absent fields from zero values.
type openWeatherPayload struct {
	Name *string `json:"name"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description *string `json:"description"`
		Icon        *string `json:"icon"`
	} `json:"weather"`
}

// NormalizeRecord converts a raw provider payload into a Record.
// Any missing field rejects the payload with ErrIncompleteRecord, except
// wind.speed which is read as calm (0) when the wind object has no speed.
func NormalizeRecord(raw []byte) (Record, error) {
	var p openWeatherPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Record{}, fmt.Errorf("decode weather payload: %w", err)
	}

	if p.Name == nil || p.Main == nil || p.Wind == nil || len(p.Weather) == 0 {
		return Record{}, ErrIncompleteRecord
	}
	if p.Main.Temp == nil || p.Main.Humidity == nil {
		return Record{}, ErrIncompleteRecord
	}
	cond := p.Weather[0]
	if cond.Description == nil || cond.Icon == nil {
		return Record{}, ErrIncompleteRecord
	}

	var windMS float64
	if p.Wind.Speed != nil {
		windMS = *p.Wind.Speed
	}

	rec := Record{
		CityName:     *p.Name,
		TemperatureC: *p.Main.Temp,
		HumidityPct:  int(math.Round(*p.Main.Humidity)),
		WindSpeedKmh: windMS * 3.6,
		Description:  *cond.Description,
		IconCode:     *cond.Icon,
	}
	if !rec.Complete() {
		return Record{}, ErrIncompleteRecord
	}
	return rec, nil
}
