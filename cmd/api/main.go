package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/therapist-discovery/backend/internal/adapters/cache"
	"github.com/zatekoja/therapist-discovery/backend/internal/adapters/database"
	"github.com/zatekoja/therapist-discovery/backend/internal/adapters/events"
	"github.com/zatekoja/therapist-discovery/backend/internal/adapters/search"
	"github.com/zatekoja/therapist-discovery/backend/internal/adapters/storage"
	"github.com/zatekoja/therapist-discovery/backend/internal/api/handlers"
	"github.com/zatekoja/therapist-discovery/backend/internal/api/routes"
	"github.com/zatekoja/therapist-discovery/backend/internal/application/services"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/providers"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/observability"
	"github.com/zatekoja/therapist-discovery/backend/internal/matching"
	"github.com/zatekoja/therapist-discovery/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	checks := map[string]handlers.HealthCheck{}

	// Redis is optional: without it there is no caching and no event-driven invalidation.
	var (
		cacheProvider providers.CacheProvider
		eventBus      *events.RedisEventBus
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without cache")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			eventBus = events.NewRedisEventBus(redisClient)
			checks["redis"] = redisClient.Ping
		}
	}

	needsPostgres := cfg.Matching.ProfileSource == config.ProfileSourcePostgres ||
		cfg.Matching.TaxonomySource == "postgres"
	var pgClient *postgres.Client
	if needsPostgres || cfg.Matching.ProfileSource == config.ProfileSourceTypesense {
		pgClient, err = postgres.NewClient(&cfg.Database)
		switch {
		case err != nil && needsPostgres:
			log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
		case err != nil:
			log.Warn().Err(err).Msg("PostgreSQL unavailable, search index will not follow profile updates")
			pgClient = nil
		default:
			defer pgClient.Close()
			checks["postgres"] = pgClient.Ping
		}
	}

	var (
		store       repositories.TherapistRepository
		searchIndex repositories.TherapistSearchRepository
	)
	switch cfg.Matching.ProfileSource {
	case config.ProfileSourceSeed:
		profiles, err := storage.LoadTherapistsFromFile(cfg.Matching.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Matching.SeedFile).Msg("failed to load seed profiles")
		}
		store = repositories.NewStaticTherapistRepository(profiles)
		log.Info().Int("profiles", len(profiles)).Msg("serving seed profiles")
	case config.ProfileSourceTypesense:
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Typesense client")
		}
		if err := tsClient.InitSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Typesense schema")
		}
		adapter := search.NewTherapistAdapter(tsClient)
		store, searchIndex = adapter, adapter
		checks["typesense"] = func(ctx context.Context) error {
			ok, err := tsClient.Client().Health(ctx, time.Second)
			if err == nil && !ok {
				err = errors.New("unhealthy")
			}
			return err
		}
	default:
		store = database.NewTherapistAdapter(pgClient)
	}

	var snapshotCache *database.CachedTherapistAdapter
	if cacheProvider != nil && cfg.Matching.ProfileSource != config.ProfileSourceSeed {
		snapshotCache = database.NewCachedTherapistAdapter(store, cacheProvider, cfg.Matching.SnapshotTTL, metrics)
		store = snapshotCache

		// Refresh before entries expire so the snapshot stays warm.
		interval := cfg.Matching.SnapshotTTL / 2
		if interval < 5*time.Second {
			interval = 5 * time.Second
		}
		go services.NewCacheWarmingService(snapshotCache).StartPeriodicWarming(ctx, interval)
	}

	taxonomy := matching.DefaultTaxonomy()
	if cfg.Matching.TaxonomySource == "postgres" {
		loaded, err := services.LoadTaxonomy(ctx, database.NewTaxonomyAdapter(pgClient))
		if err != nil {
			log.Warn().Err(err).Msg("failed to load taxonomy, using built-in catalog")
		} else {
			taxonomy = loaded
		}
	}

	engineOpts := []matching.Option{matching.WithTaxonomy(taxonomy)}
	if cfg.Matching.WeightsFile != "" {
		weights, err := matching.LoadWeightsFromFile(cfg.Matching.WeightsFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Matching.WeightsFile).Msg("failed to load weights")
		}
		engineOpts = append(engineOpts, matching.WithWeights(weights))
	}
	if cfg.Matching.LocationsFile != "" {
		resolver, err := storage.LoadLocationsFromFile(cfg.Matching.LocationsFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Matching.LocationsFile).Msg("failed to load locations")
		}
		engineOpts = append(engineOpts, matching.WithLocationResolver(resolver))
	}

	serviceOpts := []services.MatchingServiceOption{services.WithMetrics(metrics)}
	if cacheProvider != nil {
		serviceOpts = append(serviceOpts, services.WithResultCache(cacheProvider, cfg.Matching.ResultTTL))
	}
	matchingService := services.NewMatchingService(store, matching.NewEngine(engineOpts...), serviceOpts...)

	if eventBus != nil {
		var profileInvalidator services.ProfileCacheInvalidator
		if snapshotCache != nil {
			profileInvalidator = snapshotCache
		}
		invalidation := services.NewCacheInvalidationService(eventBus, profileInvalidator, matchingService)
		if searchIndex != nil && pgClient != nil {
			invalidation.WithSearchIndex(database.NewTherapistAdapter(pgClient), searchIndex)
		}
		if err := invalidation.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		} else {
			defer invalidation.Stop()
		}
	}

	router := routes.NewRouter(
		handlers.NewMatchingHandler(matchingService),
		handlers.NewHealthHandler(checks),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	handler := router.SetupRoutes()
	if cfg.Server.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, cfg.Server.RequestTimeout, `{"error":"request timed out","code":"UPSTREAM_UNAVAILABLE"}`)
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("profile_source", cfg.Matching.ProfileSource).
			Str("taxonomy_source", cfg.Matching.TaxonomySource).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}
	log.Info().Msg("server stopped")
}
