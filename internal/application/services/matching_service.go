package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/providers"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/observability"
	"github.com/zatekoja/therapist-discovery/backend/internal/matching"
	apperrors "github.com/zatekoja/therapist-discovery/backend/pkg/errors"
)

// DefaultResultTTL bounds how long a cached match response is served
const DefaultResultTTL = 120 * time.Second

// Distance filters are pushed to the store with this much slack so that
// bounding-box and rounding differences never drop an eligible profile.
const storeRadiusPaddingKm = 1.0

// MatchingService loads the candidate population and runs the matching engine
type MatchingService struct {
	repo      repositories.TherapistRepository
	engine    *matching.Engine
	cache     providers.CacheProvider
	resultTTL time.Duration
	metrics   *observability.Metrics
}

// MatchingServiceOption configures optional collaborators
type MatchingServiceOption func(*MatchingService)

// WithResultCache caches responses under CacheKeyMatchPrefix. A zero ttl uses DefaultResultTTL.
func WithResultCache(cache providers.CacheProvider, ttl time.Duration) MatchingServiceOption {
	return func(s *MatchingService) {
		if ttl <= 0 {
			ttl = DefaultResultTTL
		}
		s.cache = cache
		s.resultTTL = ttl
	}
}

// WithMetrics records matching metrics
func WithMetrics(metrics *observability.Metrics) MatchingServiceOption {
	return func(s *MatchingService) { s.metrics = metrics }
}

// NewMatchingService creates a new matching service
func NewMatchingService(repo repositories.TherapistRepository, engine *matching.Engine, opts ...MatchingServiceOption) *MatchingService {
	if engine == nil {
		engine = matching.NewEngine()
	}
	s := &MatchingService{repo: repo, engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MatchResponse is the ranked result of a match query
type MatchResponse struct {
	Results []entities.MatchResult `json:"results"`
	Count   int                    `json:"count"`
}

// FilterOptionsResponse lists filter values with their would-be result counts
type FilterOptionsResponse struct {
	Options  entities.FilterOptions `json:"options"`
	Eligible int                    `json:"eligible"`
}

// Match validates the criteria and returns the ranked therapists
func (s *MatchingService) Match(ctx context.Context, criteria *entities.MatchCriteria) (*MatchResponse, error) {
	ctx, span := observability.StartSpan(ctx, "MatchingService.Match")
	defer span.End()
	start := time.Now()

	req, err := matching.Normalize(criteria)
	if err != nil {
		return nil, err
	}

	key := resultCacheKey("match", req)
	var cached MatchResponse
	if s.loadResult(ctx, key, &cached) {
		return &cached, nil
	}

	profiles, err := s.loadCandidates(ctx, matchQuery(req))
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := s.engine.Match(req, profiles)
	resp := &MatchResponse{Results: results, Count: len(results)}

	observability.RecordMatch(ctx, s.metrics, "match", len(profiles), len(results), time.Since(start))
	observability.LoggerFromContext(ctx).Debug().
		Int("candidates", len(profiles)).
		Int("results", len(results)).
		Strs("problem_areas", req.ProblemAreas).
		Dur("duration", time.Since(start)).
		Msg("match completed")

	s.storeResult(ctx, key, resp)
	return resp, nil
}

// FilterOptions counts, per filter value, how many therapists the query would return
func (s *MatchingService) FilterOptions(ctx context.Context, criteria *entities.MatchCriteria) (*FilterOptionsResponse, error) {
	ctx, span := observability.StartSpan(ctx, "MatchingService.FilterOptions")
	defer span.End()
	start := time.Now()

	req, err := matching.NormalizePartial(criteria)
	if err != nil {
		return nil, err
	}

	key := resultCacheKey("filter-options", req)
	var cached FilterOptionsResponse
	if s.loadResult(ctx, key, &cached) {
		return &cached, nil
	}

	// Counts for alternative values need the whole listed population.
	profiles, err := s.loadCandidates(ctx, repositories.CandidateQuery{})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	options, eligible := s.engine.FilterOptions(req, profiles)
	resp := &FilterOptionsResponse{Options: options, Eligible: eligible}

	observability.RecordMatch(ctx, s.metrics, "filter_options", len(profiles), eligible, time.Since(start))
	s.storeResult(ctx, key, resp)
	return resp, nil
}

// ProblemAreas returns the selectable problem-area catalog
func (s *MatchingService) ProblemAreas() []entities.ProblemArea {
	areas := s.engine.Taxonomy().Catalog()
	if areas == nil {
		return []entities.ProblemArea{}
	}
	return areas
}

// InvalidateResults drops every cached match and filter-option response
func (s *MatchingService) InvalidateResults(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeletePattern(ctx, providers.CacheKeyMatchPrefix+"*")
}

func (s *MatchingService) loadCandidates(ctx context.Context, query repositories.CandidateQuery) ([]*entities.TherapistProfile, error) {
	start := time.Now()
	profiles, err := s.repo.FindCandidates(ctx, query)
	observability.RecordStoreMetric(ctx, s.metrics, "therapists", "find_candidates", time.Since(start))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("failed to load candidate population")
		return nil, apperrors.NewUpstreamUnavailableError("therapist directory unavailable", err)
	}
	return profiles, nil
}

func (s *MatchingService) loadResult(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("result cache read failed")
		}
		observability.RecordCacheResult(ctx, s.metrics, "result", false)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("discarding undecodable cached result")
		return false
	}
	observability.RecordCacheResult(ctx, s.metrics, "result", true)
	return true
}

func (s *MatchingService) storeResult(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to encode result for cache")
		return
	}
	seconds := int(s.resultTTL.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	if err := s.cache.Set(ctx, key, data, seconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to write result cache")
	}
}

// matchQuery narrows the store query without excluding any eligible profile
func matchQuery(req *entities.MatchRequest) repositories.CandidateQuery {
	query := repositories.CandidateQuery{OnlineOnly: req.Format == entities.FormatOnline}
	if loc := req.Location; loc.HasCoordinates() && loc.MaxDistanceKm != nil {
		query.Near = &repositories.GeoRadius{
			Latitude:  *loc.Latitude,
			Longitude: *loc.Longitude,
			RadiusKm:  *loc.MaxDistanceKm + storeRadiusPaddingKm,
		}
	}
	return query
}

// resultCacheKey hashes the normalized request so equivalent criteria share an entry
func resultCacheKey(operation string, req *entities.MatchRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return providers.CacheKeyMatchPrefix + operation + ":" + hex.EncodeToString(hash[:])
}
