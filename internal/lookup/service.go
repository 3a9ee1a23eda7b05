// Package lookup orchestrates the earthquake proximity search: geocode the
// city, fetch candidate events, pick the nearest, enrich and narrate the
// result, and record the search.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-proximity-service/internal/domain"
	"github.com/couchcryptid/quake-proximity-service/internal/observability"
)

// CatalogClient fetches seismic events for a date window.
type CatalogClient interface {
	FetchEvents(ctx context.Context, start, end time.Time) ([]domain.SeismicEvent, error)
}

// SearchRecorder appends a search record to a history store. Recording is
// best-effort; failures are logged and never surface to the caller.
type SearchRecorder interface {
	Record(ctx context.Context, rec domain.SearchRecord) error
}

// Service runs proximity lookups.
type Service struct {
	geocoder  domain.Geocoder
	catalog   CatalogClient
	recorders []SearchRecorder
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a lookup Service. Recorders are optional; each configured one
// receives a copy of every search record.
func New(geocoder domain.Geocoder, catalog CatalogClient, logger *slog.Logger, metrics *observability.Metrics, recorders ...SearchRecorder) *Service {
	return &Service{
		geocoder:  geocoder,
		catalog:   catalog,
		recorders: recorders,
		logger:    logger,
		metrics:   metrics,
	}
}

// Lookup finds the earthquake closest to the queried city within the date
// window. The flow is strictly sequential: geocode, fetch, scan, enrich,
// narrate, persist. Geocode and fetch failures are fatal for the request;
// reverse-geocode and persist failures degrade without aborting.
func (s *Service) Lookup(ctx context.Context, query domain.ProximityQuery) (domain.ProximityResult, error) {
	start := time.Now()
	result, err := s.lookup(ctx, query)
	s.metrics.LookupDuration.Observe(time.Since(start).Seconds())
	s.metrics.LookupsTotal.WithLabelValues(outcome(result, err)).Inc()
	return result, err
}

func (s *Service) lookup(ctx context.Context, query domain.ProximityQuery) (domain.ProximityResult, error) {
	origin, err := s.geocoder.ForwardGeocode(ctx, query.DisplayName())
	if err != nil {
		if errors.Is(err, domain.ErrPlaceNotFound) {
			return domain.ProximityResult{}, fmt.Errorf("geocode city %q: %w", query.DisplayName(), domain.ErrCityNotFound)
		}
		return domain.ProximityResult{}, fmt.Errorf("geocode city %q: %w", query.DisplayName(), err)
	}

	events, err := s.catalog.FetchEvents(ctx, query.StartDate, query.EndDate)
	if err != nil {
		return domain.ProximityResult{}, fmt.Errorf("fetch events: %w", err)
	}

	nearest, distanceKm, found := domain.FindClosest(origin, events)

	var result domain.ProximityResult
	if found {
		label := s.reverseGeocodeOrUnknown(ctx, nearest.Location)
		result = domain.ProximityResult{
			Found:             true,
			NearestEvent:      nearest,
			DistanceKm:        distanceKm,
			NearestPlaceLabel: label,
			Narrative:         domain.FoundNarrative(query, nearest, label),
		}
	} else {
		result = domain.ProximityResult{
			Narrative: domain.NotFoundNarrative(query),
		}
	}

	s.recordSearch(ctx, query, result)

	return result, nil
}

// reverseGeocodeOrUnknown resolves the winning event's coordinates to a place
// label. Any failure degrades to the UnknownLocation sentinel; reverse
// geocoding is never fatal to a lookup.
func (s *Service) reverseGeocodeOrUnknown(ctx context.Context, point domain.GeoPoint) string {
	label, err := s.geocoder.ReverseGeocode(ctx, point)
	if err != nil {
		s.logger.Warn("reverse geocoding failed",
			"lat", point.Lat,
			"lon", point.Lon,
			"error", err,
		)
		return domain.UnknownLocation
	}
	return label
}

// recordSearch writes the audit record to every configured recorder. A
// failure is logged and counted but never converts a successful lookup into
// an error response.
func (s *Service) recordSearch(ctx context.Context, query domain.ProximityQuery, result domain.ProximityResult) {
	if len(s.recorders) == 0 {
		return
	}
	rec := domain.NewSearchRecord(query, result)
	for _, r := range s.recorders {
		if err := r.Record(ctx, rec); err != nil {
			s.metrics.HistoryPersistFailures.Inc()
			s.logger.Warn("search history persist failed",
				"record_id", rec.ID,
				"city", rec.CityName,
				"error", err,
			)
		}
	}
}

func outcome(result domain.ProximityResult, err error) string {
	switch {
	case err == nil && result.Found:
		return "found"
	case err == nil:
		return "no_results"
	case errors.Is(err, domain.ErrCityNotFound):
		return "city_not_found"
	default:
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return "upstream_error"
		}
		return "internal_error"
	}
}
