package lookup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/couchcryptid/quake-proximity-service/internal/domain"
	"github.com/couchcryptid/quake-proximity-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockGeocoder struct {
	forwardPoint domain.GeoPoint
	forwardErr   error
	reverseLabel string
	reverseErr   error
	forwardCalls int
	reverseCalls int
	lastPlace    string
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, place string) (domain.GeoPoint, error) {
	m.forwardCalls++
	m.lastPlace = place
	return m.forwardPoint, m.forwardErr
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _ domain.GeoPoint) (string, error) {
	m.reverseCalls++
	return m.reverseLabel, m.reverseErr
}

type mockCatalog struct {
	events []domain.SeismicEvent
	err    error
	calls  int
}

func (m *mockCatalog) FetchEvents(_ context.Context, _, _ time.Time) ([]domain.SeismicEvent, error) {
	m.calls++
	return m.events, m.err
}

type mockRecorder struct {
	err     error
	calls   int
	lastRec domain.SearchRecord
}

func (m *mockRecorder) Record(_ context.Context, rec domain.SearchRecord) error {
	m.calls++
	m.lastRec = rec
	return m.err
}

// --- fixtures ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func laQuery() domain.ProximityQuery {
	return domain.ProximityQuery{
		CityName:          "Los Angeles",
		StateAbbreviation: "CA",
		StartDate:         time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2021, time.July, 5, 0, 0, 0, 0, time.UTC),
	}
}

var losAngeles = domain.GeoPoint{Lat: 34.0522, Lon: -118.2437}

// ridgecrestEvent sits roughly 182 km from Los Angeles.
func ridgecrestEvent() domain.SeismicEvent {
	return domain.SeismicEvent{
		Magnitude:  5.25,
		Location:   domain.GeoPoint{Lat: 35.6225, Lon: -117.6709},
		OccurredAt: time.Date(2021, time.June, 5, 3, 19, 0, 0, time.UTC),
	}
}

func newService(geo *mockGeocoder, cat *mockCatalog, recorders ...SearchRecorder) *Service {
	return New(geo, cat, discardLogger(), observability.NewMetricsForTesting(), recorders...)
}

// --- tests ---

func TestLookup_Found(t *testing.T) {
	geo := &mockGeocoder{
		forwardPoint: losAngeles,
		reverseLabel: "Ridgecrest, Kern County, California, United States",
	}
	cat := &mockCatalog{events: []domain.SeismicEvent{ridgecrestEvent()}}
	rec := &mockRecorder{}

	result, err := newService(geo, cat, rec).Lookup(context.Background(), laQuery())
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.Equal(t, 5.25, result.NearestEvent.Magnitude)
	assert.InDelta(t, 182.27, result.DistanceKm, 0.01)
	assert.Equal(t, "Ridgecrest, Kern County, California, United States", result.NearestPlaceLabel)
	assert.Equal(t,
		"Result for Los Angeles, CA between June 01, 2021 and July 05, 2021: "+
			"The closest earthquake to Los Angeles, CA was an M 5.25 - "+
			"Ridgecrest, Kern County, California, United States on June 05",
		result.Narrative)

	assert.Equal(t, "Los Angeles, CA", geo.lastPlace, "geocode uses the display name")
	assert.Equal(t, 1, rec.calls)
	require.NotNil(t, rec.lastRec.ClosestMagnitude)
	assert.Equal(t, 5.25, *rec.lastRec.ClosestMagnitude)
}

func TestLookup_NoResults(t *testing.T) {
	geo := &mockGeocoder{forwardPoint: losAngeles}
	cat := &mockCatalog{events: nil}
	rec := &mockRecorder{}

	result, err := newService(geo, cat, rec).Lookup(context.Background(), laQuery())
	require.NoError(t, err)

	assert.False(t, result.Found)
	assert.Equal(t,
		"No results found for Los Angeles, CA between June 01, 2021 and July 05, 2021.",
		result.Narrative)

	assert.Equal(t, 0, geo.reverseCalls, "nothing to reverse geocode")
	assert.Equal(t, 1, rec.calls, "no-result lookups are still recorded")
	assert.Nil(t, rec.lastRec.ClosestMagnitude)
}

func TestLookup_CityNotFound_SkipsCatalog(t *testing.T) {
	geo := &mockGeocoder{forwardErr: domain.ErrPlaceNotFound}
	cat := &mockCatalog{}
	rec := &mockRecorder{}

	q := laQuery()
	q.CityName = "Nowhereville"
	q.StateAbbreviation = ""

	_, err := newService(geo, cat, rec).Lookup(context.Background(), q)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCityNotFound)

	assert.Equal(t, 0, cat.calls, "catalog must not be queried for an unresolvable city")
	assert.Equal(t, 0, rec.calls)
}

func TestLookup_CatalogUnavailable_NoEnrichOrPersist(t *testing.T) {
	geo := &mockGeocoder{forwardPoint: losAngeles}
	cat := &mockCatalog{err: &domain.UpstreamError{Source: "usgs", StatusCode: http.StatusServiceUnavailable}}
	rec := &mockRecorder{}

	_, err := newService(geo, cat, rec).Lookup(context.Background(), laQuery())
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)

	assert.Equal(t, 0, geo.reverseCalls)
	assert.Equal(t, 0, rec.calls)
}

func TestLookup_ReverseGeocodeFailureDegrades(t *testing.T) {
	geo := &mockGeocoder{
		forwardPoint: losAngeles,
		reverseErr:   errors.New("rate limited"),
	}
	cat := &mockCatalog{events: []domain.SeismicEvent{ridgecrestEvent()}}

	result, err := newService(geo, cat).Lookup(context.Background(), laQuery())
	require.NoError(t, err, "reverse geocode failure must not abort the lookup")

	assert.True(t, result.Found)
	assert.Equal(t, domain.UnknownLocation, result.NearestPlaceLabel)
	assert.Contains(t, result.Narrative, "M 5.25 - Unknown location on June 05")
}

func TestLookup_PersistFailureIsSwallowed(t *testing.T) {
	geo := &mockGeocoder{forwardPoint: losAngeles, reverseLabel: "Ridgecrest"}
	cat := &mockCatalog{events: []domain.SeismicEvent{ridgecrestEvent()}}
	rec := &mockRecorder{err: errors.New("connection refused")}

	result, err := newService(geo, cat, rec).Lookup(context.Background(), laQuery())
	require.NoError(t, err, "persist failure must not surface to the caller")

	assert.True(t, result.Found)
	assert.Equal(t, 1, rec.calls)
}

func TestLookup_AllRecordersGetTheRecord(t *testing.T) {
	geo := &mockGeocoder{forwardPoint: losAngeles, reverseLabel: "Ridgecrest"}
	cat := &mockCatalog{events: []domain.SeismicEvent{ridgecrestEvent()}}
	failing := &mockRecorder{err: errors.New("broker down")}
	healthy := &mockRecorder{}

	_, err := newService(geo, cat, failing, healthy).Lookup(context.Background(), laQuery())
	require.NoError(t, err)

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls, "one recorder failing must not skip the others")
	assert.Equal(t, failing.lastRec.ID, healthy.lastRec.ID)
}

func TestLookup_UnexpectedGeocoderErrorPropagates(t *testing.T) {
	geo := &mockGeocoder{forwardErr: errors.New("connection reset")}
	cat := &mockCatalog{}

	_, err := newService(geo, cat).Lookup(context.Background(), laQuery())
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrCityNotFound))
	assert.Equal(t, 0, cat.calls)
}

func TestLookup_PicksNearestAcrossCandidates(t *testing.T) {
	far := domain.SeismicEvent{
		Magnitude:  7.0,
		Location:   domain.GeoPoint{Lat: 35.6762, Lon: 139.6503}, // Tokyo
		OccurredAt: time.Date(2021, time.June, 10, 0, 0, 0, 0, time.UTC),
	}
	geo := &mockGeocoder{forwardPoint: losAngeles, reverseLabel: "Ridgecrest"}
	cat := &mockCatalog{events: []domain.SeismicEvent{far, ridgecrestEvent()}}

	result, err := newService(geo, cat).Lookup(context.Background(), laQuery())
	require.NoError(t, err)

	assert.Equal(t, 5.25, result.NearestEvent.Magnitude, "higher magnitude must not beat shorter distance")
}
