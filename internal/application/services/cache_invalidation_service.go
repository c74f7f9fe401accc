package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/providers"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/therapist-discovery/backend/pkg/errors"
)

const invalidationTimeout = 5 * time.Second

// ProfileCacheInvalidator drops cached profiles and candidate populations
type ProfileCacheInvalidator interface {
	Invalidate(ctx context.Context, therapistID string) error
}

// ResultCacheInvalidator drops cached match responses
type ResultCacheInvalidator interface {
	InvalidateResults(ctx context.Context) error
}

// CacheInvalidationService reacts to profile events published by profile
// management. Every change invalidates the candidate snapshot and cached
// results; when a search index is configured the profile is also re-indexed.
type CacheInvalidationService struct {
	eventBus providers.EventBus
	profiles ProfileCacheInvalidator
	results  ResultCacheInvalidator

	source repositories.TherapistRepository
	index  repositories.TherapistSearchRepository

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCacheInvalidationService creates a new cache invalidation service.
// profiles and results may be nil.
func NewCacheInvalidationService(eventBus providers.EventBus, profiles ProfileCacheInvalidator, results ResultCacheInvalidator) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		eventBus: eventBus,
		profiles: profiles,
		results:  results,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// WithSearchIndex keeps index in sync with source on every profile event
func (s *CacheInvalidationService) WithSearchIndex(source repositories.TherapistRepository, index repositories.TherapistSearchRepository) *CacheInvalidationService {
	s.source = source
	s.index = index
	return s
}

// Start begins listening for profile events
func (s *CacheInvalidationService) Start() error {
	events, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelProfileUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to profile updates: %w", err)
	}

	s.wg.Add(1)
	go s.processEvents(events)
	log.Info().Str("channel", providers.EventChannelProfileUpdates).Msg("cache invalidation service started")
	return nil
}

// Stop stops processing and waits for the in-flight event
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(events <-chan *entities.ProfileEvent) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			if err := s.HandleEvent(event); err != nil {
				log.Warn().Err(err).Str("event_id", event.ID).Str("therapist_id", event.TherapistID).Msg("profile event handling incomplete")
			}
		}
	}
}

// HandleEvent applies a single profile event
func (s *CacheInvalidationService) HandleEvent(event *entities.ProfileEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), invalidationTimeout)
	defer cancel()

	log.Debug().
		Str("event_id", event.ID).
		Str("therapist_id", event.TherapistID).
		Str("type", string(event.EventType)).
		Msg("processing profile event")

	var errs []error
	if s.index != nil && s.source != nil && event.TherapistID != "" {
		errs = append(errs, s.syncIndex(ctx, event))
	}
	if s.profiles != nil {
		if err := s.profiles.Invalidate(ctx, event.TherapistID); err != nil {
			errs = append(errs, fmt.Errorf("invalidate profile cache: %w", err))
		}
	}
	if s.results != nil {
		if err := s.results.InvalidateResults(ctx); err != nil {
			errs = append(errs, fmt.Errorf("invalidate result cache: %w", err))
		}
	}
	return errors.Join(errs...)
}

// InvalidateAll drops every snapshot and cached result
func (s *CacheInvalidationService) InvalidateAll(ctx context.Context) error {
	var errs []error
	if s.profiles != nil {
		errs = append(errs, s.profiles.Invalidate(ctx, ""))
	}
	if s.results != nil {
		errs = append(errs, s.results.InvalidateResults(ctx))
	}
	return errors.Join(errs...)
}

func (s *CacheInvalidationService) syncIndex(ctx context.Context, event *entities.ProfileEvent) error {
	if event.EventType == entities.ProfileEventUnpublished {
		if err := s.index.Delete(ctx, event.TherapistID); err != nil {
			return fmt.Errorf("remove %s from index: %w", event.TherapistID, err)
		}
		return nil
	}

	profile, err := s.source.GetByID(ctx, event.TherapistID)
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return s.index.Delete(ctx, event.TherapistID)
	}
	if err != nil {
		return fmt.Errorf("load %s for indexing: %w", event.TherapistID, err)
	}
	if err := s.index.Index(ctx, profile); err != nil {
		return fmt.Errorf("index %s: %w", event.TherapistID, err)
	}
	return nil
}
