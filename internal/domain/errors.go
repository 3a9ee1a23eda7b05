package domain

import (
	"errors"
	"fmt"
)

// ErrPlaceNotFound is returned by forward geocoding when the provider has no
// match for the place string.
var ErrPlaceNotFound = errors.New("place not found")

// ErrCityNotFound is returned by the city directory when an identifier
// resolves to nothing, and by the orchestrator when a city name cannot be
// geocoded.
var ErrCityNotFound = errors.New("city not found")

// UpstreamError reports a non-success response from a dependent service.
// It is fatal for the request it occurred in and is never retried.
type UpstreamError struct {
	Source     string // "usgs" or "nominatim"
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Source, e.StatusCode)
}
