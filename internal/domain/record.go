package domain

import "github.com/google/uuid"

// NewSearchRecord builds the audit row for a completed lookup. The
// Closest* columns stay nil when the window produced no winner.
func NewSearchRecord(q ProximityQuery, result ProximityResult) SearchRecord {
	rec := SearchRecord{
		ID:                uuid.NewString(),
		CityID:            q.CityID,
		CityName:          q.CityName,
		StateAbbreviation: q.StateAbbreviation,
		StartDate:         q.StartDate,
		EndDate:           q.EndDate,
		RecordedAt:        clock.Now().UTC(),
	}
	if result.Found {
		eventTime := result.NearestEvent.OccurredAt
		magnitude := result.NearestEvent.Magnitude
		distance := result.DistanceKm
		label := result.NearestPlaceLabel
		rec.ClosestEventTime = &eventTime
		rec.ClosestMagnitude = &magnitude
		rec.ClosestDistanceKm = &distance
		rec.ClosestPlaceLabel = &label
	}
	return rec
}
