package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/therapist-discovery/backend/internal/adapters/database"
	"github.com/zatekoja/therapist-discovery/backend/internal/adapters/search"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/observability"
	"github.com/zatekoja/therapist-discovery/backend/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		var err error
		interval, err = time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			log.Fatal().Str("interval", intervalValue).Msg("interval must be a positive duration")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("therapist-indexer", cfg.Server.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}
		if interval <= 0 {
			break
		}
		reset = false

		log.Info().Dur("next_run_in", interval).Msg("reindex complete")
		select {
		case <-ctx.Done():
			log.Info().Msg("indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Warn().Str("collection", tsClient.Collection()).Msg("deleting Typesense collection")
		if _, err := tsClient.Client().Collection(tsClient.Collection()).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}
	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	start := time.Now()
	indexed, removed, err := reindex(ctx, database.NewTherapistAdapter(pgClient), search.NewTherapistAdapter(tsClient))
	if err != nil {
		return err
	}

	log.Info().
		Int("indexed", indexed).
		Int("removed", removed).
		Dur("duration", time.Since(start)).
		Msg("therapist index synchronized")
	return nil
}

// reindex upserts every listed profile and removes index entries that are
// no longer listed. Single-profile failures are logged and skipped.
func reindex(ctx context.Context, source repositories.TherapistRepository, index repositories.TherapistSearchRepository) (indexed, removed int, err error) {
	profiles, err := source.FindCandidates(ctx, repositories.CandidateQuery{})
	if err != nil {
		return 0, 0, fmt.Errorf("load listed profiles: %w", err)
	}

	listed := make(map[string]struct{}, len(profiles))
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return indexed, removed, err
		}
		listed[p.ID] = struct{}{}
		if err := index.Index(ctx, p); err != nil {
			log.Warn().Err(err).Str("therapist_id", p.ID).Msg("failed to index profile")
			continue
		}
		indexed++
	}

	current, err := index.FindCandidates(ctx, repositories.CandidateQuery{})
	if err != nil {
		return indexed, removed, fmt.Errorf("list indexed profiles: %w", err)
	}
	for _, p := range current {
		if _, ok := listed[p.ID]; ok {
			continue
		}
		if err := index.Delete(ctx, p.ID); err != nil {
			log.Warn().Err(err).Str("therapist_id", p.ID).Msg("failed to remove stale profile")
			continue
		}
		removed++
	}

	return indexed, removed, nil
}
