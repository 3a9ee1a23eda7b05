package domain

import (
	"fmt"
	"time"
)

// GeoPoint is a WGS-84 latitude/longitude coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SeismicEvent is one catalog feature within the query window.
type SeismicEvent struct {
	Magnitude  float64   `json:"magnitude"`
	Location   GeoPoint  `json:"location"`
	OccurredAt time.Time `json:"occurred_at"` // epoch-millis on the wire, UTC here
}

// City is a directory entry resolved from a city identifier.
type City struct {
	ID                int
	Name              string
	StateAbbreviation string
}

// ProximityQuery describes one lookup request. StartDate <= EndDate is not
// enforced; an inverted window is passed through to the catalog, which
// answers with an empty set or an error of its own.
type ProximityQuery struct {
	CityID            int // 0 when the lookup came in by name
	CityName          string
	StateAbbreviation string
	StartDate         time.Time
	EndDate           time.Time
}

// DisplayName renders the city as it appears in narratives: the bare name,
// or "Name, ST" when a state abbreviation is present.
func (q ProximityQuery) DisplayName() string {
	if q.StateAbbreviation == "" {
		return q.CityName
	}
	return fmt.Sprintf("%s, %s", q.CityName, q.StateAbbreviation)
}

// ProximityResult is the outcome of a lookup. When Found is false only the
// Narrative is meaningful.
type ProximityResult struct {
	Found             bool
	NearestEvent      SeismicEvent
	DistanceKm        float64
	NearestPlaceLabel string
	Narrative         string
}

// SearchRecord is the append-only audit row written per completed lookup.
// The Closest* fields are nil for a no-result window.
type SearchRecord struct {
	ID                string     `json:"id"`
	CityID            int        `json:"city_id,omitempty"`
	CityName          string     `json:"city_name"`
	StateAbbreviation string     `json:"state_abbreviation,omitempty"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           time.Time  `json:"end_date"`
	ClosestEventTime  *time.Time `json:"closest_event_time,omitempty"`
	ClosestMagnitude  *float64   `json:"closest_magnitude,omitempty"`
	ClosestDistanceKm *float64   `json:"closest_distance_km,omitempty"`
	ClosestPlaceLabel *string    `json:"closest_place_label,omitempty"`
	RecordedAt        time.Time  `json:"recorded_at"`
}
