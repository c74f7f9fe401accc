package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/therapist-discovery/backend/internal/adapters/storage"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/therapist-discovery/backend/internal/matching"
	"github.com/zatekoja/therapist-discovery/backend/pkg/config"
)

// Loads the demo population and the built-in problem-area catalog into Postgres.
func main() {
	file := flag.String("file", "", "therapist seed file (defaults to PROFILE_SEED_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *file == "" {
		*file = cfg.Matching.SeedFile
	}

	profiles, err := storage.LoadTherapistsFromFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read seed file")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	db := pgClient.Goqu()

	if os.Getenv("RESET_DB") == "true" {
		log.Warn().Msg("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE therapist_profiles, problem_areas`); err != nil {
			log.Fatal().Err(err).Msg("failed to truncate tables")
		}
	}

	for _, area := range matching.DefaultTaxonomy().Catalog() {
		_, err := db.Insert("problem_areas").
			Rows(goqu.Record{
				"value":       area.Value,
				"label":       area.Label,
				"specialties": pq.Array(area.Specialties),
				"sort_order":  area.SortOrder,
				"is_active":   true,
			}).
			OnConflict(goqu.DoUpdate("value", goqu.Record{
				"label":       goqu.I("excluded.label"),
				"specialties": goqu.I("excluded.specialties"),
				"sort_order":  goqu.I("excluded.sort_order"),
			})).
			Prepared(true).
			Executor().ExecContext(ctx)
		if err != nil {
			log.Fatal().Err(err).Str("problem_area", area.Value).Msg("failed to seed problem area")
		}
	}

	for _, p := range profiles {
		if err := upsertProfile(ctx, db, p); err != nil {
			log.Fatal().Err(err).Str("therapist_id", p.ID).Msg("failed to seed therapist")
		}
	}

	log.Info().
		Int("therapists", len(profiles)).
		Int("problem_areas", len(matching.DefaultTaxonomy().Catalog())).
		Msg("seed complete")
}

func upsertProfile(ctx context.Context, db *goqu.Database, p *entities.TherapistProfile) error {
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"id":                   p.ID,
		"slug":                 p.Slug,
		"display_name":         p.DisplayName,
		"specialties":          pq.Array(nonNil(p.Specialties)),
		"modalities":           pq.Array(nonNil(p.Modalities)),
		"languages":            pq.Array(nonNil(p.Languages)),
		"accepted_insurance":   pq.Array(nonNil(p.AcceptedInsurance)),
		"online":               p.Online,
		"city":                 nullIfEmpty(p.City),
		"postal_code":          nullIfEmpty(p.PostalCode),
		"latitude":             p.Latitude,
		"longitude":            p.Longitude,
		"price_min":            p.PriceMin,
		"price_max":            p.PriceMax,
		"estimated_wait_weeks": p.EstimatedWaitWeeks,
		"gender":               p.Gender,
		"years_experience":     p.YearsExperience,
		"communication_style":  p.CommunicationStyle,
		"status":               string(p.Status),
		"is_public":            p.IsPublic,
		"updated_at":           updatedAt,
	}

	update := goqu.Record{}
	for column := range record {
		if column != "id" {
			update[column] = goqu.I("excluded." + column)
		}
	}

	_, err := db.Insert("therapist_profiles").
		Rows(record).
		OnConflict(goqu.DoUpdate("id", update)).
		Prepared(true).
		Executor().ExecContext(ctx)
	return err
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
