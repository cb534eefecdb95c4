// Package weather supplies the environmental observations the
// diagnosis is assessed under. The core treats weather as a pure data
// provider: the observation is resolved once per request by the API
// layer and threaded through as a value.
package weather

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// Observation is a resolved snapshot of field conditions.
type Observation struct {
	Temperature  float64 `json:"temperature"`   // °C
	Humidity     float64 `json:"humidity"`      // %
	Rainfall7Day float64 `json:"rainfall_7day"` // mm over the last 7 days
	WindSpeed    float64 `json:"wind_speed"`    // km/h
}

// Provider resolves current conditions for a location identifier.
type Provider interface {
	Current(ctx context.Context, location string) (Observation, error)
}

// DefaultObservation is returned for locations the provider does not
// recognize. Documented fallback: mild, humid, lightly rained-on.
var DefaultObservation = Observation{
	Temperature:  25.0,
	Humidity:     70.0,
	Rainfall7Day: 10.0,
	WindSpeed:    5.0,
}

// StaticProvider serves observations from a fixed scenario table. It
// stands in for a real weather API, which is out of scope for the
// plane; the Provider interface is the seam a live client would fill.
type StaticProvider struct {
	scenarios map[string]Observation
}

// NewStaticProvider builds a provider with the built-in scenarios.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		scenarios: map[string]Observation{
			"nagpur": {Temperature: 28.5, Humidity: 75.0, Rainfall7Day: 15.2, WindSpeed: 8.5},
			"mumbai": {Temperature: 32.0, Humidity: 85.0, Rainfall7Day: 45.0, WindSpeed: 12.0},
		},
	}
}

// Current looks up the location (case-insensitive, matching on the
// part before any comma so "Nagpur, India" resolves as "Nagpur") and
// falls back to DefaultObservation for unknown locations.
func (p *StaticProvider) Current(ctx context.Context, location string) (Observation, error) {
	key := strings.ToLower(strings.TrimSpace(location))
	if i := strings.IndexByte(key, ','); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}
	if obs, ok := p.scenarios[key]; ok {
		return obs, nil
	}
	log.Debug().Str("location", location).Msg("unknown location, using default weather")
	return DefaultObservation, nil
}
