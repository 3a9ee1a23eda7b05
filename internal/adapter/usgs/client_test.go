package usgs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/quake-proximity-service/internal/domain"
	"github.com/couchcryptid/quake-proximity-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"type": "FeatureCollection",
	"features": [
		{
			"id": "ci39493944",
			"properties": {"mag": 5.25, "time": 1622864340000},
			"geometry": {"coordinates": [-117.6709, 35.6225, 8.0]}
		},
		{
			"id": "us7000e54r",
			"properties": {"mag": 6.1, "time": 1623110400000},
			"geometry": {"coordinates": [-122.4194, 37.7749, 10.0]}
		}
	]
}`

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func window() (time.Time, time.Time) {
	return time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, time.July, 5, 0, 0, 0, 0, time.UTC)
}

func TestClient_FetchEvents_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "geojson", q.Get("format"))
		assert.Equal(t, "2021-06-01", q.Get("starttime"))
		assert.Equal(t, "2021-07-05", q.Get("endtime"))
		assert.Equal(t, "5", q.Get("minmagnitude"))
		assert.Equal(t, "magnitude", q.Get("orderby"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	start, end := window()
	events, err := testClient(srv.URL).FetchEvents(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, 5.25, events[0].Magnitude)
	assert.Equal(t, 35.6225, events[0].Location.Lat)
	assert.Equal(t, -117.6709, events[0].Location.Lon)
	assert.Equal(t, time.Date(2021, time.June, 5, 3, 39, 0, 0, time.UTC), events[0].OccurredAt)

	assert.Equal(t, 6.1, events[1].Magnitude)
}

func TestClient_FetchEvents_EmptyWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	start, end := window()
	events, err := testClient(srv.URL).FetchEvents(context.Background(), start, end)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestClient_FetchEvents_ServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	start, end := window()
	_, err := testClient(srv.URL).FetchEvents(context.Background(), start, end)
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "usgs", upstream.Source)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
}

func TestClient_FetchEvents_SkipsMalformedFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"features": [
				{"id": "no-mag", "properties": {"mag": null, "time": 1622864340000}, "geometry": {"coordinates": [-117.6, 35.6, 8.0]}},
				{"id": "no-geom", "properties": {"mag": 5.5, "time": 1622864340000}, "geometry": {"coordinates": []}},
				{"id": "ok", "properties": {"mag": 5.1, "time": 1622864340000}, "geometry": {"coordinates": [-117.6709, 35.6225, 8.0]}}
			]
		}`))
	}))
	defer srv.Close()

	start, end := window()
	events, err := testClient(srv.URL).FetchEvents(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 5.1, events[0].Magnitude)
}

func TestClient_FetchEvents_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	start, end := window()
	_, err := c.FetchEvents(context.Background(), start, end)
	require.Error(t, err)
}

func TestClient_FetchEvents_InvertedWindowPassesThrough(t *testing.T) {
	// Date-boundary semantics belong to USGS; the client forwards an inverted
	// window untouched and surfaces whatever the provider answers.
	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("starttime")
		gotEnd = r.URL.Query().Get("endtime")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	end, start := window() // swapped on purpose
	events, err := testClient(srv.URL).FetchEvents(context.Background(), start, end)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, "2021-07-05", gotStart)
	assert.Equal(t, "2021-06-01", gotEnd)
}
