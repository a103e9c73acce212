package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port           string
	Env            string
	AdminPassword  string
	AllowedOrigins []string
	MigrationsPath string

	DB       DatabaseConfig
	Redis    RedisConfig
	Checkout CheckoutConfig
	Metrics  MetricsConfig
}

// DatabaseConfig contains PostgreSQL connection parameters. When URL is set
// it takes precedence over the individual fields.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig contains Redis connection parameters. An empty Host disables
// the lookup cache.
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	LookupTTL time.Duration

	// RefreshInterval is how often the lookup cache is rewarmed; 0 disables.
	RefreshInterval time.Duration
}

// CheckoutConfig contains checkout pricing parameters.
type CheckoutConfig struct {
	DeliveryFee decimal.Decimal
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Prefix string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "5000")
	cfg.Env = getEnv("ENV", "development")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "")
	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGIN", "http://localhost:5173"))
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", "file://migrations")

	// Database
	cfg.DB = DatabaseConfig{
		URL:      getEnv("DATABASE_URL", ""),
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	var err error
	if cfg.DB.ConnMaxLifetime, err = parseDurationEnv("DB_CONN_MAX_LIFETIME", "5m"); err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}
	if cfg.Redis.LookupTTL, err = parseDurationEnv("LOOKUP_CACHE_TTL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid LOOKUP_CACHE_TTL: %w", err)
	}
	if cfg.Redis.RefreshInterval, err = parseDurationEnv("LOOKUP_REFRESH_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid LOOKUP_REFRESH_INTERVAL: %w", err)
	}

	fee, err := decimal.NewFromString(getEnv("DELIVERY_FEE", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid DELIVERY_FEE: %w", err)
	}
	if fee.IsNegative() {
		return nil, errors.New("DELIVERY_FEE must be >= 0")
	}
	cfg.Checkout = CheckoutConfig{DeliveryFee: fee}

	cfg.Metrics = MetricsConfig{Prefix: getEnv("METRICS_PREFIX", "cbc_bookstore")}

	if cfg.DB.URL == "" && (cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "") {
		return nil, errors.New("database configuration incomplete: set DATABASE_URL or DB_HOST, DB_USER and DB_NAME")
	}

	if cfg.AdminPassword == "" {
		return nil, errors.New("ADMIN_PASSWORD must be set for product administration")
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string for the configuration.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
