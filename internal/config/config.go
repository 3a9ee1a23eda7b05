package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DatabaseURL string

	// USGS earthquake catalog configuration.
	USGSBaseURL string
	USGSTimeout time.Duration

	// Nominatim geocoding configuration.
	NominatimBaseURL   string
	NominatimUserAgent string
	NominatimTimeout   time.Duration
	GeocodeCacheSize   int

	// Kafka search-audit configuration.
	KafkaBrokers      []string
	KafkaAuditTopic   string
	KafkaAuditEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	usgsTimeout, err := parseTimeout("USGS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	nominatimTimeout, err := parseTimeout("NOMINATIM_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	auditTopic := os.Getenv("KAFKA_AUDIT_TOPIC")
	auditEnabled := auditTopic != ""
	if v := os.Getenv("KAFKA_AUDIT_ENABLED"); v != "" {
		auditEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabaseURL: os.Getenv("DATABASE_URL"),

		USGSBaseURL: sharedcfg.EnvOrDefault("USGS_BASE_URL", "https://earthquake.usgs.gov/fdsnws/event/1/query"),
		USGSTimeout: usgsTimeout,

		NominatimBaseURL:   sharedcfg.EnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "quake-proximity-service"),
		NominatimTimeout:   nominatimTimeout,
		GeocodeCacheSize:   parseGeocodeCacheSize(),

		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAuditTopic:   auditTopic,
		KafkaAuditEnabled: auditEnabled,
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.USGSBaseURL == "" {
		return nil, errors.New("USGS_BASE_URL is required")
	}
	if cfg.NominatimBaseURL == "" {
		return nil, errors.New("NOMINATIM_BASE_URL is required")
	}
	if cfg.KafkaAuditEnabled && cfg.KafkaAuditTopic == "" {
		return nil, errors.New("KAFKA_AUDIT_ENABLED is true but KAFKA_AUDIT_TOPIC is not set")
	}
	if cfg.KafkaAuditEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_AUDIT_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func parseTimeout(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseGeocodeCacheSize() int {
	if s := os.Getenv("GEOCODE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
