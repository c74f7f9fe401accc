package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Profile sources for the matching service
const (
	ProfileSourcePostgres  = "postgres"
	ProfileSourceTypesense = "typesense"
	ProfileSourceSeed      = "seed"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	Matching  MatchingConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	Environment    string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// MatchingConfig holds matching engine and candidate loading configuration
type MatchingConfig struct {
	// WeightsFile optionally overrides the scoring weights (JSON)
	WeightsFile string
	// SnapshotTTL is how long a loaded candidate population may be served from cache
	SnapshotTTL time.Duration
	// ResultTTL is how long a computed match result may be served from cache
	ResultTTL time.Duration
	// TaxonomySource is "postgres" or "builtin"
	TaxonomySource string
	// ProfileSource selects the candidate store
	ProfileSource string
	// SeedFile is the JSON population used when ProfileSource is "seed"
	SeedFile string
	// LocationsFile optionally maps postal codes and cities to coordinates
	LocationsFile string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Environment:    getEnv("ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "therapist_discovery"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Typesense: TypesenseConfig{
			URL:        getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey:     getEnv("TYPESENSE_API_KEY", "xyz"),
			Collection: getEnv("TYPESENSE_COLLECTION", "therapists"),
		},
		Matching: MatchingConfig{
			WeightsFile:    getEnv("MATCH_WEIGHTS_FILE", ""),
			SnapshotTTL:    getEnvAsDuration("MATCH_SNAPSHOT_TTL", 60*time.Second),
			ResultTTL:      getEnvAsDuration("MATCH_RESULT_TTL", 120*time.Second),
			TaxonomySource: getEnv("MATCH_TAXONOMY_SOURCE", "builtin"),
			ProfileSource:  getEnv("PROFILE_SOURCE", ProfileSourcePostgres),
			SeedFile:       getEnv("PROFILE_SEED_FILE", "data/therapists.json"),
			LocationsFile:  getEnv("MATCH_LOCATIONS_FILE", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "therapist-discovery"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Matching.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *MatchingConfig) validate() error {
	switch c.ProfileSource {
	case ProfileSourcePostgres, ProfileSourceTypesense, ProfileSourceSeed:
	default:
		return fmt.Errorf("invalid PROFILE_SOURCE %q: expected postgres, typesense or seed", c.ProfileSource)
	}
	switch c.TaxonomySource {
	case "builtin", "postgres":
	default:
		return fmt.Errorf("invalid MATCH_TAXONOMY_SOURCE %q: expected builtin or postgres", c.TaxonomySource)
	}
	if c.SnapshotTTL < 0 || c.ResultTTL < 0 {
		return fmt.Errorf("matching cache TTLs must not be negative")
	}
	return nil
}

// Address returns the listen address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
