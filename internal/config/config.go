package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config captures the catalog-and-ratings service configuration derived from
// environment variables.
type Config struct {
	Port              string `envconfig:"PORT" default:"5000"`
	DBURL             string `envconfig:"DB_URL"`
	TMDBURL           string `envconfig:"TMDB_URL" default:"https://api.themoviedb.org/3"`
	TMDBAPIKey        string `envconfig:"TMDB_API_KEY"`
	TMDBTimeoutSecs   int    `envconfig:"TMDB_TIMEOUT_SECS" default:"5"`
	TMDBRequestsPerS  int    `envconfig:"TMDB_RPS" default:"20"`
	AllowOrigins      string `envconfig:"ALLOW_ORIGINS" default:"*"`
	ReadTimeoutSecs   int    `envconfig:"SERVER_READ_TIMEOUT" default:"15"`
	WriteTimeoutSecs  int    `envconfig:"SERVER_WRITE_TIMEOUT" default:"15"`
	IdleTimeoutSecs   int    `envconfig:"SERVER_IDLE_TIMEOUT" default:"60"`
	DBMaxConns        int    `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns        int    `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxIdleSecs     int    `envconfig:"DB_MAX_CONN_IDLE_SECS" default:"300"`
	DBMaxLifeSecs     int    `envconfig:"DB_MAX_CONN_LIFETIME_SECS" default:"3600"`
	DBConnTimeoutSecs int    `envconfig:"DB_CONN_TIMEOUT_SECS" default:"10"`
	DBStatementCache  int    `envconfig:"DB_STATEMENT_CACHE_CAPACITY" default:"128"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat         string `envconfig:"LOG_FORMAT" default:"json"`
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIBaseURL         string `envconfig:"API_BASE_URL" default:"http://localhost:5000/api"`
	RequestTimeoutSecs int    `envconfig:"REQUEST_TIMEOUT_SECS" default:"10"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat          string `envconfig:"LOG_FORMAT" default:"console"`
}

// Load reads the service configuration, applying defaults and validation.
func Load() (Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.TMDBAPIKey == "" {
		return Config{}, fmt.Errorf("TMDB_API_KEY is required")
	}
	if _, err := url.ParseRequestURI(cfg.TMDBURL); err != nil {
		return Config{}, fmt.Errorf("TMDB_URL is invalid: %w", err)
	}
	if cfg.TMDBTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("TMDB_TIMEOUT_SECS must be positive")
	}
	if cfg.TMDBRequestsPerS <= 0 {
		return Config{}, fmt.Errorf("TMDB_RPS must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}

	return cfg, nil
}

// Origins splits ALLOW_ORIGINS into the list handed to the CORS middleware.
func (c Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// LoadClient reads the terminal client configuration.
func LoadClient() (ClientConfig, error) {
	_ = godotenv.Load()

	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("load config: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return ClientConfig{}, fmt.Errorf("API_BASE_URL is invalid: %w", err)
	}
	if cfg.RequestTimeoutSecs <= 0 {
		return ClientConfig{}, fmt.Errorf("REQUEST_TIMEOUT_SECS must be positive")
	}
	return cfg, nil
}

// RequestTimeout bounds every round-trip issued by the controllers.
func (c ClientConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}
