// Package usgs implements the seismic catalog client against the USGS
// fdsnws event query API.
package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/quake-proximity-service/internal/domain"
	"github.com/couchcryptid/quake-proximity-service/internal/observability"
)

// minMagnitude is the server-side magnitude floor for catalog queries.
const minMagnitude = "5"

// Client fetches earthquake events from the USGS catalog.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a USGS catalog client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchEvents issues one catalog query for the [start, end] window and parses
// the GeoJSON feature collection. Dates go out as YYYY-MM-DD strings; whether
// the boundary dates are inclusive is the provider's semantics. A non-200
// response is a fatal *domain.UpstreamError, never retried.
func (c *Client) FetchEvents(ctx context.Context, start, end time.Time) ([]domain.SeismicEvent, error) {
	params := url.Values{
		"format":       {"geojson"},
		"starttime":    {start.Format(time.DateOnly)},
		"endtime":      {end.Format(time.DateOnly)},
		"minmagnitude": {minMagnitude},
		"orderby":      {"magnitude"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	reqStart := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.CatalogAPIDuration.Observe(time.Since(reqStart).Seconds())
	if err != nil {
		c.metrics.CatalogRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.CatalogRequests.WithLabelValues("error").Inc()
		return nil, &domain.UpstreamError{Source: "usgs", StatusCode: resp.StatusCode}
	}

	var collection featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		c.metrics.CatalogRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	events := make([]domain.SeismicEvent, 0, len(collection.Features))
	for _, f := range collection.Features {
		ev, ok := f.event()
		if !ok {
			c.logger.Warn("skipping malformed catalog feature", "id", f.ID)
			continue
		}
		events = append(events, ev)
	}

	c.metrics.CatalogRequests.WithLabelValues("success").Inc()
	return events, nil
}

// USGS GeoJSON response types.

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string `json:"id"`
	Properties struct {
		Mag  *float64 `json:"mag"`
		Time int64    `json:"time"` // epoch milliseconds
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
	} `json:"geometry"`
}

func (f feature) event() (domain.SeismicEvent, bool) {
	if f.Properties.Mag == nil || len(f.Geometry.Coordinates) < 2 {
		return domain.SeismicEvent{}, false
	}
	return domain.SeismicEvent{
		Magnitude: *f.Properties.Mag,
		Location: domain.GeoPoint{
			Lat: f.Geometry.Coordinates[1],
			Lon: f.Geometry.Coordinates[0],
		},
		OccurredAt: time.UnixMilli(f.Properties.Time).UTC(),
	}, true
}
