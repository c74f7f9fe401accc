package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
	"github.com/zatekoja/therapist-discovery/backend/internal/matching"
)

// LoadTaxonomy reads the problem-area catalog once at startup. An empty
// catalog falls back to the built-in one.
func LoadTaxonomy(ctx context.Context, repo repositories.TaxonomyRepository) (*matching.StaticTaxonomy, error) {
	areas, err := repo.ListProblemAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load problem areas: %w", err)
	}
	if len(areas) == 0 {
		log.Warn().Msg("problem area catalog is empty, using built-in taxonomy")
		return matching.DefaultTaxonomy(), nil
	}

	log.Info().Int("problem_areas", len(areas)).Msg("loaded problem area taxonomy")
	return matching.NewStaticTaxonomy(areas), nil
}
