package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/therapist-discovery/backend/pkg/errors"
	"github.com/zatekoja/therapist-discovery/backend/pkg/geo"
)

// StaticTherapistRepository serves a fixed in-memory population.
// It backs the seed mode and tests.
type StaticTherapistRepository struct {
	mu       sync.RWMutex
	profiles map[string]*entities.TherapistProfile
	// Err, when set, is returned by every read
	Err error
}

// NewStaticTherapistRepository creates a repository holding the given profiles
func NewStaticTherapistRepository(profiles []*entities.TherapistProfile) *StaticTherapistRepository {
	r := &StaticTherapistRepository{profiles: make(map[string]*entities.TherapistProfile, len(profiles))}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

// Put adds or replaces a profile
func (r *StaticTherapistRepository) Put(profile *entities.TherapistProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.ID] = profile
}

// FindCandidates returns listed profiles ordered by ID
func (r *StaticTherapistRepository) FindCandidates(ctx context.Context, query CandidateQuery) ([]*entities.TherapistProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	out := make([]*entities.TherapistProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		if !p.IsListed() {
			continue
		}
		if query.OnlineOnly && !p.Online {
			continue
		}
		if query.Near != nil {
			if !p.HasCoordinates() {
				continue
			}
			d, err := geo.DistanceKm(query.Near.Latitude, query.Near.Longitude, *p.Latitude, *p.Longitude)
			if err != nil || d > query.Near.RadiusKm {
				continue
			}
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

// GetByID retrieves a single profile regardless of listing state
func (r *StaticTherapistRepository) GetByID(ctx context.Context, id string) (*entities.TherapistProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	p, ok := r.profiles[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("therapist not found")
	}
	return p, nil
}
