package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
)

// warmQueries are the store queries every request shape starts from:
// filter options always read the full population, online matches the online subset.
var warmQueries = []repositories.CandidateQuery{
	{},
	{OnlineOnly: true},
}

// CacheWarmingService keeps the candidate snapshot cache populated so that
// requests rarely pay for a cold store read
type CacheWarmingService struct {
	repo repositories.TherapistRepository
}

// NewCacheWarmingService creates a warming service over a caching repository
func NewCacheWarmingService(repo repositories.TherapistRepository) *CacheWarmingService {
	return &CacheWarmingService{repo: repo}
}

// WarmCache loads every warm query once
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	start := time.Now()
	total := 0
	for _, q := range warmQueries {
		profiles, err := s.repo.FindCandidates(ctx, q)
		if err != nil {
			return fmt.Errorf("failed to warm snapshot %s: %w", q.CacheKey(), err)
		}
		total += len(profiles)
	}

	log.Debug().Int("profiles", total).Dur("duration", time.Since(start)).Msg("snapshot cache warmed")
	return nil
}

// StartPeriodicWarming warms immediately and then on every tick until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if err := s.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("initial cache warming failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.WarmCache(ctx); err != nil {
				log.Warn().Err(err).Msg("cache warming failed")
			}
		}
	}
}
