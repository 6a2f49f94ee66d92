package weather

import (
	"fmt"
	"strconv"
)

// QueryKind distinguishes the two ways a lookup can be addressed.
type QueryKind int

const (
	ByCity QueryKind = iota
	ByCoordinates
)

func (k QueryKind) String() string {
	switch k {
	case ByCity:
		return "city"
	case ByCoordinates:
		return "coordinates"
	default:
		return "unknown"
	}
}

// Query identifies the place a single lookup is made for.
// Exactly one of City or Lat/Lon is meaningful, depending on Kind.
type Query struct {
	Kind QueryKind
	City string
	Lat  float64
	Lon  float64
}

// CityQuery builds a by-city query.
func CityQuery(city string) Query {
	return Query{Kind: ByCity, City: city}
}

// CoordinatesQuery builds a by-coordinates query.
func CoordinatesQuery(lat, lon float64) Query {
	return Query{Kind: ByCoordinates, Lat: lat, Lon: lon}
}

// Key returns a short string for log lines.
func (q Query) Key() string {
	if q.Kind == ByCoordinates {
		return strconv.FormatFloat(q.Lat, 'f', 4, 64) + "," + strconv.FormatFloat(q.Lon, 'f', 4, 64)
	}
	return q.City
}

func (q Query) String() string {
	return fmt.Sprintf("%s(%s)", q.Kind, q.Key())
}

// Record is the normalized view of a provider payload that the UI renders.
type Record struct {
	CityName     string  `json:"cityName"`
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  int     `json:"humidityPct"`
	WindSpeedKmh float64 `json:"windSpeedKmh"`
	Description  string  `json:"description"`
	IconCode     string  `json:"iconCode"`
}

// Complete reports whether every field needed for display is populated.
// Numeric fields may legitimately be zero, so only strings are checked here;
// numeric presence is enforced by NormalizeRecord.
func (r Record) Complete() bool {
	return r.CityName != "" && r.Description != "" && r.IconCode != ""
}
