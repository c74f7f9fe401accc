package repositories

import (
	"context"
	"fmt"

	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

// TherapistRepository supplies the candidate population for matching.
// Implementations only read; profiles are owned by profile management.
type TherapistRepository interface {
	// FindCandidates returns listed profiles that may satisfy the query.
	// The result may be a superset; exact rules are applied by the matcher.
	FindCandidates(ctx context.Context, query CandidateQuery) ([]*entities.TherapistProfile, error)

	// GetByID retrieves a single profile
	GetByID(ctx context.Context, id string) (*entities.TherapistProfile, error)
}

// TherapistSearchRepository is a search index over listed profiles (e.g. Typesense)
type TherapistSearchRepository interface {
	TherapistRepository

	// Index adds or replaces a profile in the index
	Index(ctx context.Context, profile *entities.TherapistProfile) error

	// Delete removes a profile from the index
	Delete(ctx context.Context, id string) error
}

// TaxonomyRepository loads the problem-area catalog
type TaxonomyRepository interface {
	ListProblemAreas(ctx context.Context) ([]entities.ProblemArea, error)
}

// CandidateQuery narrows the population a store has to load.
// A zero query means every listed profile.
type CandidateQuery struct {
	// OnlineOnly restricts to therapists offering online sessions
	OnlineOnly bool
	// Near restricts to profiles around a point
	Near *GeoRadius
	// Limit caps the number of profiles returned, 0 means no cap
	Limit int
}

// GeoRadius is a circular search area
type GeoRadius struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// CacheKey is a stable representation of the query for snapshot caching
func (q CandidateQuery) CacheKey() string {
	key := "all"
	if q.OnlineOnly {
		key = "online"
	}
	if q.Near != nil {
		key += fmt.Sprintf(":%.3f:%.3f:%.1f", q.Near.Latitude, q.Near.Longitude, q.Near.RadiusKm)
	}
	if q.Limit > 0 {
		key += fmt.Sprintf(":limit=%d", q.Limit)
	}
	return key
}
