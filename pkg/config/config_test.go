package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://localhost:8108", cfg.Typesense.URL)
	assert.Equal(t, "therapists", cfg.Typesense.Collection)
	assert.Equal(t, 60*time.Second, cfg.Matching.SnapshotTTL)
	assert.Equal(t, 120*time.Second, cfg.Matching.ResultTTL)
	assert.Equal(t, ProfileSourcePostgres, cfg.Matching.ProfileSource)
	assert.Equal(t, "builtin", cfg.Matching.TaxonomySource)
	assert.Empty(t, cfg.Matching.WeightsFile)
}

func TestLoad_MatchingConfig(t *testing.T) {
	t.Setenv("MATCH_WEIGHTS_FILE", "/etc/match/weights.json")
	t.Setenv("MATCH_SNAPSHOT_TTL", "30s")
	t.Setenv("MATCH_RESULT_TTL", "300")
	t.Setenv("MATCH_TAXONOMY_SOURCE", "postgres")
	t.Setenv("PROFILE_SOURCE", "seed")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://example.at, https://www.example.at,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/etc/match/weights.json", cfg.Matching.WeightsFile)
	assert.Equal(t, 30*time.Second, cfg.Matching.SnapshotTTL)
	assert.Equal(t, 5*time.Minute, cfg.Matching.ResultTTL)
	assert.Equal(t, "postgres", cfg.Matching.TaxonomySource)
	assert.Equal(t, ProfileSourceSeed, cfg.Matching.ProfileSource)
	assert.Equal(t, []string{"https://example.at", "https://www.example.at"}, cfg.Server.AllowedOrigins)
}

func TestLoad_TypesenseConfig(t *testing.T) {
	t.Setenv("TYPESENSE_URL", "http://test-typesense:8108")
	t.Setenv("TYPESENSE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://test-typesense:8108", cfg.Typesense.URL)
	assert.Equal(t, "test-key", cfg.Typesense.APIKey)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("unknown profile source", func(t *testing.T) {
		t.Setenv("PROFILE_SOURCE", "mysql")
		_, err := Load()
		assert.ErrorContains(t, err, "PROFILE_SOURCE")
	})

	t.Run("unknown taxonomy source", func(t *testing.T) {
		t.Setenv("MATCH_TAXONOMY_SOURCE", "yaml")
		_, err := Load()
		assert.ErrorContains(t, err, "MATCH_TAXONOMY_SOURCE")
	})

	t.Run("unparsable duration keeps default", func(t *testing.T) {
		t.Setenv("MATCH_SNAPSHOT_TTL", "soon")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 60*time.Second, cfg.Matching.SnapshotTTL)
	})
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "therapists", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=therapists sslmode=disable", cfg.DatabaseDSN())
}
