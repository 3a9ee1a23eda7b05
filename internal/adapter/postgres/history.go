package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/quake-proximity-service/internal/domain"
)

// History is the append-only search history store. It implements
// lookup.SearchRecorder.
type History struct {
	pool *pgxpool.Pool
}

// NewHistory creates a search history store over an existing pool.
func NewHistory(pool *pgxpool.Pool) *History {
	return &History{pool: pool}
}

// Record appends one search record. Rows are never updated or deleted here.
// The city id column stays NULL for lookups that came in by name.
func (h *History) Record(ctx context.Context, rec domain.SearchRecord) error {
	const query = `
		INSERT INTO earthquake_searches (
			id, city_id, city_name, state_abbreviation,
			start_date, end_date,
			closest_earthquake_date, closest_earthquake_magnitude,
			closest_earthquake_distance, closest_earthquake_location,
			recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var cityID *int
	if rec.CityID != 0 {
		cityID = &rec.CityID
	}

	_, err := h.pool.Exec(ctx, query,
		rec.ID, cityID, rec.CityName, rec.StateAbbreviation,
		rec.StartDate, rec.EndDate,
		rec.ClosestEventTime, rec.ClosestMagnitude,
		rec.ClosestDistanceKm, rec.ClosestPlaceLabel,
		rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert search record %s: %w", rec.ID, err)
	}
	return nil
}
