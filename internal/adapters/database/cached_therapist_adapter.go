package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/providers"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/observability"
)

// DefaultSnapshotTTL bounds how stale a cached candidate population may be
const DefaultSnapshotTTL = 60 * time.Second

// CachedTherapistAdapter caches candidate populations and single profiles.
// Entries expire after the TTL or when profile events invalidate them.
type CachedTherapistAdapter struct {
	adapter repositories.TherapistRepository
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewCachedTherapistAdapter wraps a therapist repository with caching.
// A zero ttl uses DefaultSnapshotTTL; metrics may be nil.
func NewCachedTherapistAdapter(adapter repositories.TherapistRepository, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *CachedTherapistAdapter {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &CachedTherapistAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
	}
}

func snapshotCacheKey(query repositories.CandidateQuery) string {
	return providers.CacheKeySnapshotPrefix + query.CacheKey()
}

func profileCacheKey(id string) string {
	return providers.CacheKeyProfilePrefix + id
}

// FindCandidates serves the population from cache when possible
func (a *CachedTherapistAdapter) FindCandidates(ctx context.Context, query repositories.CandidateQuery) ([]*entities.TherapistProfile, error) {
	key := snapshotCacheKey(query)

	var cached []*entities.TherapistProfile
	if a.load(ctx, key, &cached) {
		observability.RecordCacheResult(ctx, a.metrics, "snapshot", true)
		return cached, nil
	}
	observability.RecordCacheResult(ctx, a.metrics, "snapshot", false)

	profiles, err := a.adapter.FindCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	a.store(ctx, key, profiles)
	return profiles, nil
}

// GetByID retrieves a profile with caching
func (a *CachedTherapistAdapter) GetByID(ctx context.Context, id string) (*entities.TherapistProfile, error) {
	key := profileCacheKey(id)

	var cached entities.TherapistProfile
	if a.load(ctx, key, &cached) {
		observability.RecordCacheResult(ctx, a.metrics, "profile", true)
		return &cached, nil
	}
	observability.RecordCacheResult(ctx, a.metrics, "profile", false)

	profile, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.store(ctx, key, profile)
	return profile, nil
}

// Invalidate drops the cached profile and every cached population
func (a *CachedTherapistAdapter) Invalidate(ctx context.Context, therapistID string) error {
	var errs []error
	if therapistID != "" {
		errs = append(errs, a.cache.Delete(ctx, profileCacheKey(therapistID)))
	}
	errs = append(errs, a.cache.DeletePattern(ctx, providers.CacheKeySnapshotPrefix+"*"))
	return errors.Join(errs...)
}

func (a *CachedTherapistAdapter) load(ctx context.Context, key string, dest interface{}) bool {
	data, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("therapist cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false
	}
	return true
}

func (a *CachedTherapistAdapter) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}
	seconds := int(a.ttl.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	if err := a.cache.Set(ctx, key, data, seconds); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to write therapist cache")
	}
}
