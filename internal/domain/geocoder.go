package domain

import "context"

// UnknownLocation is the place label used when reverse geocoding finds no
// match. Reverse lookup misses degrade to this sentinel instead of failing.
const UnknownLocation = "Unknown location"

// Geocoder resolves place names to coordinates and back.
type Geocoder interface {
	// ForwardGeocode converts a free-text place name to coordinates.
	// Returns ErrPlaceNotFound when the provider has no match. The caller
	// controls how the place string is composed; no normalization happens here.
	ForwardGeocode(ctx context.Context, place string) (GeoPoint, error)

	// ReverseGeocode converts coordinates to a human-readable address.
	// A provider miss yields UnknownLocation, not an error.
	ReverseGeocode(ctx context.Context, point GeoPoint) (string, error)
}
