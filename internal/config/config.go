package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig
	Logging  LoggingConfig
	Provider ProviderConfig
	TMDB     TMDBConfig
	Graph    GraphConfig
	Cache    CacheConfig
	Search   SearchConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

// Provider kinds.
const (
	ProviderTMDB    = "tmdb"
	ProviderCatalog = "catalog"
	ProviderDataset = "dataset"
)

// ProviderConfig selects where movie metadata comes from.
type ProviderConfig struct {
	Kind        string
	DatasetPath string
}

// TMDBConfig configures the remote metadata API.
type TMDBConfig struct {
	APIKey      string
	AccessToken string
	BaseURL     string
	Timeout     time.Duration
	RateLimit   float64
	RateBurst   int
	MaxRetries  int
}

// GraphConfig describes connectivity to the Neo4j movie catalogue.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// CacheConfig bounds each per-kind metadata cache.
type CacheConfig struct {
	Capacity   int
	FailureTTL time.Duration
}

// SearchConfig bounds neighbor expansion and search duration.
type SearchConfig struct {
	PeopleLimit      int
	FilmographyLimit int
	Workers          int
	Timeout          time.Duration
}

const (
	defaultEnvFile          = ".env"
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 90 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultTMDBBaseURL      = "https://api.themoviedb.org/3/"
	defaultTMDBTimeout      = 10 * time.Second
	defaultTMDBRateLimit    = 40.0
	defaultTMDBRateBurst    = 10
	defaultTMDBMaxRetries   = 3
	defaultCacheCapacity    = 4096
	defaultCacheFailureTTL  = 30 * time.Second
	defaultPeopleLimit      = 50
	defaultFilmographyLimit = 50
	defaultSearchWorkers    = 8
	defaultSearchTimeout    = 60 * time.Second
)

// Load reads an optional .env file (ENV_FILE, default ".env") and then configuration from
// environment variables, applying defaults. Variables already set in the environment win over
// the file.
func Load() (Config, error) {
	if err := loadEnvFile(valueOrDefault("ENV_FILE", defaultEnvFile)); err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			MetricsEnabled:    parseBoolWithDefault("SERVER_METRICS_ENABLED", false),
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Provider: ProviderConfig{
			Kind:        strings.ToLower(valueOrDefault("PROVIDER", ProviderTMDB)),
			DatasetPath: os.Getenv("DATASET_PATH"),
		},
		TMDB: TMDBConfig{
			APIKey:      os.Getenv("TMDB_API_KEY"),
			AccessToken: os.Getenv("TMDB_ACCESS_TOKEN"),
			BaseURL:     valueOrDefault("TMDB_BASE_URL", defaultTMDBBaseURL),
			RateBurst:   parseIntWithDefault("TMDB_RATE_BURST", defaultTMDBRateBurst),
			MaxRetries:  parseIntWithDefault("TMDB_MAX_RETRIES", defaultTMDBMaxRetries),
		},
		Graph: GraphConfig{
			URI:            os.Getenv("GRAPH_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       os.Getenv("GRAPH_USERNAME"),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
		},
		Cache: CacheConfig{
			Capacity: parseIntWithDefault("CACHE_CAPACITY", defaultCacheCapacity),
		},
		Search: SearchConfig{
			PeopleLimit:      parseIntWithDefault("SEARCH_PEOPLE_LIMIT", defaultPeopleLimit),
			FilmographyLimit: parseIntWithDefault("SEARCH_FILMOGRAPHY_LIMIT", defaultFilmographyLimit),
			Workers:          parseIntWithDefault("SEARCH_WORKERS", defaultSearchWorkers),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key      string
		fallback time.Duration
		target   *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", defaultReadTimeout, &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", defaultWriteTimeout, &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", defaultIdleTimeout, &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &cfg.HTTP.ShutdownTimeout},
		{"TMDB_TIMEOUT", defaultTMDBTimeout, &cfg.TMDB.Timeout},
		{"SEARCH_TIMEOUT", defaultSearchTimeout, &cfg.Search.Timeout},
		{"CACHE_FAILURE_TTL", defaultCacheFailureTTL, &cfg.Cache.FailureTTL},
	}
	for _, d := range durations {
		if *d.target, err = parseDuration(d.key, d.fallback); err != nil {
			return Config{}, err
		}
	}

	if cfg.TMDB.RateLimit, err = parseFloat("TMDB_RATE_LIMIT", defaultTMDBRateLimit); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider.Kind {
	case ProviderTMDB:
		if c.TMDB.APIKey == "" && c.TMDB.AccessToken == "" {
			return errors.New("TMDB_API_KEY or TMDB_ACCESS_TOKEN is required for the tmdb provider")
		}
	case ProviderCatalog:
		if c.Graph.URI == "" {
			return errors.New("GRAPH_URI is required for the catalog provider")
		}
	case ProviderDataset:
		if c.Provider.DatasetPath == "" {
			return errors.New("DATASET_PATH is required for the dataset provider")
		}
	default:
		return fmt.Errorf("unknown PROVIDER %q", c.Provider.Kind)
	}
	if c.Search.Timeout <= 0 {
		return errors.New("SEARCH_TIMEOUT must be positive")
	}
	return nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	val, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return val, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
