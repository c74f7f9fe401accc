package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
	tsclient "github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/clients/typesense"
	apperrors "github.com/zatekoja/therapist-discovery/backend/pkg/errors"
)

// Typesense caps per_page at 250
const searchPageSize = 250

// TherapistAdapter serves the candidate population from the Typesense index
type TherapistAdapter struct {
	client *tsclient.Client
}

var _ repositories.TherapistSearchRepository = (*TherapistAdapter)(nil)

// NewTherapistAdapter creates a new Typesense therapist adapter
func NewTherapistAdapter(client *tsclient.Client) *TherapistAdapter {
	return &TherapistAdapter{client: client}
}

// Index upserts a profile. Unlisted profiles are removed instead.
func (a *TherapistAdapter) Index(ctx context.Context, profile *entities.TherapistProfile) error {
	if !profile.IsListed() {
		return a.Delete(ctx, profile.ID)
	}

	_, err := a.client.Client().Collection(a.client.Collection()).Documents().Upsert(ctx, toDocument(profile))
	if err != nil {
		return fmt.Errorf("failed to index therapist %s: %w", profile.ID, err)
	}
	return nil
}

// Delete removes a profile from the index; a missing document is not an error
func (a *TherapistAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(a.client.Collection()).Document(id).Delete(ctx)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete therapist %s from index: %w", id, err)
	}
	return nil
}

// FindCandidates pages through every indexed profile matching the query
func (a *TherapistAdapter) FindCandidates(ctx context.Context, query repositories.CandidateQuery) ([]*entities.TherapistProfile, error) {
	filter := candidateFilter(query)
	profiles := make([]*entities.TherapistProfile, 0)

	for page := 1; ; page++ {
		params := &api.SearchCollectionParams{
			Q:        pointer.String("*"),
			QueryBy:  pointer.String("display_name"),
			FilterBy: pointer.String(filter),
			SortBy:   pointer.String("updated_at:desc"),
			Page:     pointer.Int(page),
			PerPage:  pointer.Int(searchPageSize),
		}

		result, err := a.client.Client().Collection(a.client.Collection()).Documents().Search(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to search therapists: %w", err)
		}
		if result.Hits == nil {
			break
		}

		for _, hit := range *result.Hits {
			if hit.Document == nil {
				continue
			}
			p, err := fromDocument(*hit.Document)
			if err != nil {
				log.Warn().Err(err).Msg("skipping malformed therapist document")
				continue
			}
			profiles = append(profiles, p)
			if query.Limit > 0 && len(profiles) == query.Limit {
				return profiles, nil
			}
		}

		if len(*result.Hits) < searchPageSize {
			break
		}
	}

	return profiles, nil
}

// GetByID retrieves an indexed profile
func (a *TherapistAdapter) GetByID(ctx context.Context, id string) (*entities.TherapistProfile, error) {
	doc, err := a.client.Client().Collection(a.client.Collection()).Document(id).Retrieve(ctx)
	if isNotFound(err) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("therapist with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve therapist %s: %w", id, err)
	}
	return fromDocument(doc)
}

// candidateFilter builds the filter_by expression for a query
func candidateFilter(query repositories.CandidateQuery) string {
	clauses := []string{"listed:=true"}
	if query.OnlineOnly {
		clauses = append(clauses, "online:=true")
	}
	if near := query.Near; near != nil {
		clauses = append(clauses, fmt.Sprintf("location:(%f, %f, %.3f km)", near.Latitude, near.Longitude, near.RadiusKm))
	}
	return strings.Join(clauses, " && ")
}

func isNotFound(err error) bool {
	var httpErr *typesense.HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound
}
