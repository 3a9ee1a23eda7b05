package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/quake-proximity-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-proximity-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-proximity-service/internal/adapter/nominatim"
	"github.com/couchcryptid/quake-proximity-service/internal/adapter/postgres"
	"github.com/couchcryptid/quake-proximity-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-proximity-service/internal/config"
	"github.com/couchcryptid/quake-proximity-service/internal/lookup"
	"github.com/couchcryptid/quake-proximity-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	directory := postgres.NewDirectory(pool)
	history := postgres.NewHistory(pool)

	geocoder := nominatim.NewCachedGeocoder(
		nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.NominatimTimeout, metrics, logger),
		cfg.GeocodeCacheSize,
		metrics,
	)
	catalog := usgs.NewClient(cfg.USGSBaseURL, cfg.USGSTimeout, metrics, logger)

	recorders := []lookup.SearchRecorder{history}

	// Kafka audit mirroring (feature-flagged via KAFKA_AUDIT_TOPIC / KAFKA_AUDIT_ENABLED).
	var auditWriter *kafkaadapter.Writer
	if cfg.KafkaAuditEnabled {
		auditWriter = kafkaadapter.NewWriter(cfg, logger)
		recorders = append(recorders, auditWriter)
		logger.Info("kafka search audit enabled", "topic", cfg.KafkaAuditTopic)
	} else {
		logger.Info("kafka search audit disabled")
	}

	service := lookup.New(geocoder, catalog, logger, metrics, recorders...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, service, directory, directory, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if auditWriter != nil {
		if err := auditWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
