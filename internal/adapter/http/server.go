// Package http exposes the lookup API plus health, readiness, and metrics
// endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/quake-proximity-service/internal/domain"
)

// lookupTimeout bounds one end-to-end lookup: geocode, catalog fetch, and
// reverse geocode together.
const lookupTimeout = 25 * time.Second

// LookupService runs proximity lookups.
type LookupService interface {
	Lookup(ctx context.Context, query domain.ProximityQuery) (domain.ProximityResult, error)
}

// CityDirectory resolves city identifiers to name and state abbreviation.
type CityDirectory interface {
	GetCity(ctx context.Context, id int) (domain.City, error)
}

// Server exposes the earthquake lookup routes and operational endpoints.
type Server struct {
	httpServer *http.Server
	service    LookupService
	directory  CityDirectory
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the lookup, health, readiness, and
// metrics routes.
func NewServer(addr string, service LookupService, directory CityDirectory, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service:   service,
		directory: directory,
		logger:    logger,
	}

	mux.HandleFunc("GET /v1/earthquakes/{cityID}", s.handleLookupByCityID)
	mux.HandleFunc("GET /v1/earthquakes", s.handleLookupByName)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleLookupByCityID looks up by a directory city id. The id must resolve
// before the core runs; a miss short-circuits with 404 and no external calls.
func (s *Server) handleLookupByCityID(w http.ResponseWriter, r *http.Request) {
	cityID, err := strconv.Atoi(r.PathValue("cityID"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "city id must be an integer")
		return
	}

	start, end, ok := parseWindow(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	city, err := s.directory.GetCity(ctx, cityID)
	if err != nil {
		if errors.Is(err, domain.ErrCityNotFound) {
			writeDetail(w, http.StatusNotFound, "City not found")
			return
		}
		s.logger.Error("city directory lookup failed", "city_id", cityID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	s.runLookup(ctx, w, domain.ProximityQuery{
		CityID:            city.ID,
		CityName:          city.Name,
		StateAbbreviation: city.StateAbbreviation,
		StartDate:         start,
		EndDate:           end,
	})
}

// handleLookupByName looks up by a free-text city name with an optional
// state abbreviation.
func (s *Server) handleLookupByName(w http.ResponseWriter, r *http.Request) {
	cityName := r.URL.Query().Get("city_name")
	if cityName == "" {
		writeDetail(w, http.StatusBadRequest, "city_name is required")
		return
	}

	start, end, ok := parseWindow(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	s.runLookup(ctx, w, domain.ProximityQuery{
		CityName:          cityName,
		StateAbbreviation: r.URL.Query().Get("state"),
		StartDate:         start,
		EndDate:           end,
	})
}

func (s *Server) runLookup(ctx context.Context, w http.ResponseWriter, query domain.ProximityQuery) {
	result, err := s.service.Lookup(ctx, query)
	if err != nil {
		s.writeLookupError(w, query, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": result.Narrative})
}

// writeLookupError maps the error taxonomy onto HTTP statuses: 404 for an
// unresolvable city, 502 carrying the upstream status, 500 with a generic
// detail for everything else (cause logged, never leaked).
func (s *Server) writeLookupError(w http.ResponseWriter, query domain.ProximityQuery, err error) {
	if errors.Is(err, domain.ErrCityNotFound) {
		writeDetail(w, http.StatusNotFound, "City not found")
		return
	}

	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		s.logger.Error("upstream dependency failed",
			"source", upstream.Source,
			"status", upstream.StatusCode,
			"city", query.DisplayName(),
		)
		writeDetail(w, http.StatusBadGateway,
			"Failed to retrieve earthquake data ("+upstream.Source+" returned status "+strconv.Itoa(upstream.StatusCode)+").")
		return
	}

	s.logger.Error("lookup failed", "city", query.DisplayName(), "error", err)
	writeDetail(w, http.StatusInternalServerError, "An unexpected error occurred")
}

// parseWindow reads the start_date/end_date query parameters. On failure it
// writes a 400 response and returns ok=false.
func parseWindow(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	start, err := domain.ParseQueryDate(r.URL.Query().Get("start_date"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "start_date must be a YYYY-MM-DD date")
		return time.Time{}, time.Time{}, false
	}
	end, err = domain.ParseQueryDate(r.URL.Query().Get("end_date"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "end_date must be a YYYY-MM-DD date")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
