package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/therapist-discovery/backend/pkg/errors"
)

// TaxonomyAdapter reads the problem-area catalog and its specialty mapping
type TaxonomyAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTaxonomyAdapter creates a new taxonomy adapter
func NewTaxonomyAdapter(client *postgres.Client) *TaxonomyAdapter {
	return &TaxonomyAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListProblemAreas returns active problem areas in display order
func (a *TaxonomyAdapter) ListProblemAreas(ctx context.Context) ([]entities.ProblemArea, error) {
	query, args, err := a.db.From("problem_areas").
		Select("value", "label", "specialties", "sort_order").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("sort_order").Asc(), goqu.I("value").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build problem area query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list problem areas: %w", err)
	}
	defer rows.Close()

	var areas []entities.ProblemArea
	for rows.Next() {
		var area entities.ProblemArea
		if err := rows.Scan(&area.Value, &area.Label, pq.Array(&area.Specialties), &area.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan problem area: %w", err)
		}
		areas = append(areas, area)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate problem areas: %w", err)
	}

	return areas, nil
}
