package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"compliance-panel/pkg/platform/middleware/metadata"
)

const (
	EnvironmentProd = "production"
	EnvironmentDev  = "development"

	defaultAdminToken = "dev-admin-token-change-me"
	defaultWidgetKey  = "dev-widget-signing-key-change-me"
	defaultGeoTimeout = 10 * time.Second
	defaultNetTimeout = 3 * time.Second
	defaultWidgetTTL  = 30 * 24 * time.Hour
	defaultRatePerMin = 60
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	Environment string
	AdminToken  string

	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Geo       GeoConfig
	Widget    WidgetConfig
	RateLimit RateLimitConfig

	// TrustedProxies are the peers whose X-Forwarded-For and X-Real-IP
	// headers are believed. Empty means the socket address is the client.
	TrustedProxies []netip.Prefix
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// DatabaseConfig selects Postgres stores. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig enables the shared rate limit store. An empty URL keeps limits in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the audit stream. No brokers means audit events are logged.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// GeoConfig tunes the jurisdiction resolution chain.
type GeoConfig struct {
	// DeviceTimeout bounds the wait for a device position fix.
	DeviceTimeout time.Duration
	// NetworkTimeout bounds a single network lookup.
	NetworkTimeout time.Duration
	// DBPath points at a MaxMind-format country database; preferred when set.
	DBPath string
	// APIURL is an HTTP IP geolocation endpoint; "{ip}" is substituted.
	APIURL string
}

type WidgetConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

type RateLimitConfig struct {
	Disabled          bool
	RequestsPerMinute int
}

// FromEnv builds a Server config from the environment, reading .env when present.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	proxies, proxyErr := metadata.ParseTrustedProxies(splitList(os.Getenv("TRUSTED_PROXIES")))
	if proxyErr != nil {
		proxyErr = fmt.Errorf("TRUSTED_PROXIES: %w", proxyErr)
	}

	cfg := Server{
		Addr:        getEnv("PANEL_ADDR", ":8080"),
		Environment: getEnv("ENVIRONMENT", EnvironmentDev),
		AdminToken:  getEnv("ADMIN_API_TOKEN", defaultAdminToken),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 500*time.Millisecond),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("AUDIT_TOPIC", "panel.audit"),
		},
		Geo: GeoConfig{
			DeviceTimeout:  getDuration("GEOLOCATION_TIMEOUT", defaultGeoTimeout),
			NetworkTimeout: getDuration("NETWORK_LOOKUP_TIMEOUT", defaultNetTimeout),
			DBPath:         os.Getenv("GEOIP_DB_PATH"),
			APIURL:         os.Getenv("GEOIP_API_URL"),
		},
		Widget: WidgetConfig{
			SigningKey: getEnv("WIDGET_SIGNING_KEY", defaultWidgetKey),
			TokenTTL:   getDuration("WIDGET_TOKEN_TTL", defaultWidgetTTL),
		},
		RateLimit: RateLimitConfig{
			Disabled:          os.Getenv("RATE_LIMIT_DISABLED") == "true",
			RequestsPerMinute: getInt("RATE_LIMIT_PER_MINUTE", defaultRatePerMin),
		},
		TrustedProxies: proxies,
	}

	if err := errors.Join(proxyErr, cfg.Validate()); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that must never reach production.
func (s Server) Validate() error {
	var errs []error
	if s.Geo.DeviceTimeout <= 0 {
		errs = append(errs, errors.New("GEOLOCATION_TIMEOUT must be positive"))
	}
	if s.Geo.NetworkTimeout <= 0 {
		errs = append(errs, errors.New("NETWORK_LOOKUP_TIMEOUT must be positive"))
	}
	if s.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if s.Widget.TokenTTL <= 0 {
		errs = append(errs, errors.New("WIDGET_TOKEN_TTL must be positive"))
	}
	if s.IsProduction() {
		if s.AdminToken == defaultAdminToken {
			errs = append(errs, errors.New("production environment detected, but ADMIN_API_TOKEN not set"))
		}
		if s.Widget.SigningKey == defaultWidgetKey {
			errs = append(errs, errors.New("production environment detected, but WIDGET_SIGNING_KEY not set"))
		}
		if s.RateLimit.Disabled {
			errs = append(errs, errors.New("rate limiting cannot be disabled in production"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func (s Server) IsProduction() bool {
	return s.Environment == EnvironmentProd
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

// getDuration accepts Go duration strings ("10s") or bare milliseconds ("10000").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return -1
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
