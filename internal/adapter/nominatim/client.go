// Package nominatim implements domain.Geocoder against the OSM Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-proximity-service/internal/domain"
	"github.com/couchcryptid/quake-proximity-service/internal/observability"
)

// Client implements domain.Geocoder using the Nominatim geocoding API.
type Client struct {
	userAgent  string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim geocoding client. Nominatim's usage policy
// requires an identifying User-Agent on every request.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// ForwardGeocode converts a free-text place name to coordinates. The place
// string is sent as-is; composing "city, state" is the caller's business.
func (c *Client) ForwardGeocode(ctx context.Context, place string) (domain.GeoPoint, error) {
	params := url.Values{
		"q":      {place},
		"format": {"json"},
		"limit":  {"1"},
	}

	results, err := c.doSearch(ctx, c.baseURL+"/search?"+params.Encode(), "forward")
	if err != nil {
		return domain.GeoPoint{}, err
	}
	if len(results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("forward", "empty").Inc()
		return domain.GeoPoint{}, fmt.Errorf("geocode %q: %w", place, domain.ErrPlaceNotFound)
	}

	point, err := results[0].point()
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("forward", "error").Inc()
		return domain.GeoPoint{}, fmt.Errorf("geocode %q: %w", place, err)
	}
	c.metrics.GeocodeRequests.WithLabelValues("forward", "success").Inc()
	return point, nil
}

// ReverseGeocode converts coordinates to a display address. A provider miss
// is not an error; it yields the domain.UnknownLocation sentinel.
func (c *Client) ReverseGeocode(ctx context.Context, point domain.GeoPoint) (string, error) {
	params := url.Values{
		"lat":    {fmt.Sprintf("%.6f", point.Lat)},
		"lon":    {fmt.Sprintf("%.6f", point.Lon)},
		"format": {"json"},
	}

	var result placeResult
	if err := c.doRequest(ctx, c.baseURL+"/reverse?"+params.Encode(), "reverse", &result); err != nil {
		return "", err
	}

	if result.DisplayName == "" {
		c.metrics.GeocodeRequests.WithLabelValues("reverse", "empty").Inc()
		return domain.UnknownLocation, nil
	}
	c.metrics.GeocodeRequests.WithLabelValues("reverse", "success").Inc()
	return result.DisplayName, nil
}

func (c *Client) doSearch(ctx context.Context, fullURL, method string) ([]placeResult, error) {
	var results []placeResult
	if err := c.doRequest(ctx, fullURL, method, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, method string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("%s geocode request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return &domain.UpstreamError{Source: "nominatim", StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Nominatim API response types. Coordinates arrive as strings.

type placeResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (r placeResult) point() (domain.GeoPoint, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("parse lat %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("parse lon %q: %w", r.Lon, err)
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}
