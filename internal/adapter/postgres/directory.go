package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/quake-proximity-service/internal/domain"
)

// Directory resolves city identifiers against the geography tables.
type Directory struct {
	pool *pgxpool.Pool
}

// NewDirectory creates a city directory over an existing pool.
func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

// GetCity resolves a city id to its name and state abbreviation. A missing
// row maps to domain.ErrCityNotFound. States predate the abbreviation column,
// so it coalesces to empty.
func (d *Directory) GetCity(ctx context.Context, id int) (domain.City, error) {
	const query = `
		SELECT c.id, c.name, COALESCE(s.state_abbreviation, '')
		FROM cities c
		LEFT JOIN states s ON s.id = c.state_province_id
		WHERE c.id = $1`

	var city domain.City
	err := d.pool.QueryRow(ctx, query, id).Scan(&city.ID, &city.Name, &city.StateAbbreviation)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.City{}, fmt.Errorf("city %d: %w", id, domain.ErrCityNotFound)
	}
	if err != nil {
		return domain.City{}, fmt.Errorf("query city %d: %w", id, err)
	}
	return city, nil
}

// CheckReadiness reports whether the directory's database is reachable.
// Backs the /readyz probe.
func (d *Directory) CheckReadiness(ctx context.Context) error {
	return d.pool.Ping(ctx)
}
