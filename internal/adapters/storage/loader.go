// Package storage loads demo data sets from JSON files.
package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/matching"
)

// LoadTherapistsFromFile reads therapist profiles from a JSON array file
func LoadTherapistsFromFile(path string) ([]*entities.TherapistProfile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read therapists file: %w", err)
	}

	var profiles []*entities.TherapistProfile
	if err := json.Unmarshal(b, &profiles); err != nil {
		return nil, fmt.Errorf("unmarshal therapists: %w", err)
	}

	seen := make(map[string]struct{}, len(profiles))
	for i, p := range profiles {
		if p == nil || p.ID == "" {
			return nil, fmt.Errorf("therapist at index %d has no id", i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("duplicate therapist id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return profiles, nil
}

// LoadLocationsFromFile reads a postal-code/city to coordinates table.
// The file is a JSON object keyed by postal code or city name.
func LoadLocationsFromFile(path string) (matching.StaticLocationResolver, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locations file: %w", err)
	}

	var points map[string]matching.Point
	if err := json.Unmarshal(b, &points); err != nil {
		return nil, fmt.Errorf("unmarshal locations: %w", err)
	}
	return matching.NewStaticLocationResolver(points), nil
}
