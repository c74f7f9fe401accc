package search

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
)

func ptr[T any](v T) *T { return &v }

func TestCandidateFilter(t *testing.T) {
	assert.Equal(t, "listed:=true", candidateFilter(repositories.CandidateQuery{}))
	assert.Equal(t, "listed:=true && online:=true", candidateFilter(repositories.CandidateQuery{OnlineOnly: true}))
	assert.Equal(t,
		"listed:=true && location:(48.208200, 16.373800, 11.000 km)",
		candidateFilter(repositories.CandidateQuery{Near: &repositories.GeoRadius{Latitude: 48.2082, Longitude: 16.3738, RadiusKm: 11}}),
	)
}

func TestDocumentMapping(t *testing.T) {
	profile := &entities.TherapistProfile{
		ID:                 "t1",
		Slug:               "anna-berger",
		DisplayName:        "Anna Berger",
		Specialties:        []string{"depression", " anxiety ", "Depression"},
		Languages:          []string{"Deutsch", "Englisch"},
		AcceptedInsurance:  []string{"PUBLIC"},
		Modalities:         []string{"cbt"},
		Online:             true,
		City:               "Wien",
		PostalCode:         "1010",
		Latitude:           ptr(48.2082),
		Longitude:          ptr(16.3738),
		PriceMin:           ptr(8000),
		EstimatedWaitWeeks: ptr(3),
		Gender:             ptr("female"),
		Status:             entities.ProfileStatusVerified,
		IsPublic:           true,
		UpdatedAt:          time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	doc := toDocument(profile)
	assert.Equal(t, []string{"depression", "anxiety"}, doc["specialties"])
	assert.Equal(t, true, doc["listed"])
	assert.NotContains(t, doc, "price_max")
	assert.NotContains(t, doc, "communication_style")

	t.Run("direct", func(t *testing.T) {
		back, err := fromDocument(doc)
		require.NoError(t, err)
		assertProfileRoundTrip(t, back)
	})

	t.Run("json decoded", func(t *testing.T) {
		data, err := json.Marshal(doc)
		require.NoError(t, err)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &decoded))

		back, err := fromDocument(decoded)
		require.NoError(t, err)
		assertProfileRoundTrip(t, back)
	})
}

func assertProfileRoundTrip(t *testing.T, p *entities.TherapistProfile) {
	t.Helper()
	assert.Equal(t, "t1", p.ID)
	assert.Equal(t, []string{"depression", "anxiety"}, p.Specialties)
	assert.Equal(t, []string{"Deutsch", "Englisch"}, p.Languages)
	assert.True(t, p.IsListed())
	assert.True(t, p.Online)
	require.True(t, p.HasCoordinates())
	assert.InDelta(t, 48.2082, *p.Latitude, 1e-9)
	require.NotNil(t, p.PriceMin)
	assert.Equal(t, 8000, *p.PriceMin)
	assert.Nil(t, p.PriceMax)
	assert.Equal(t, 3, p.WaitWeeks())
	require.NotNil(t, p.Gender)
	assert.Equal(t, "female", *p.Gender)
	assert.Nil(t, p.CommunicationStyle)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), p.UpdatedAt)
}

func TestFromDocumentRejectsMissingID(t *testing.T) {
	_, err := fromDocument(map[string]interface{}{"display_name": "x"})
	assert.Error(t, err)
}

func TestUniqueTerms(t *testing.T) {
	assert.Equal(t, []string{"Angst", "Trauma"}, uniqueTerms([]string{" Angst", "angst", "", "Trauma "}))
	assert.Empty(t, uniqueTerms(nil))
}

func TestToDocumentKeepsEverySpecialty(t *testing.T) {
	specialties := make([]string, 0, 150)
	for i := 0; i < 150; i++ {
		specialties = append(specialties, fmt.Sprintf("specialty-%03d", i))
	}
	profile := &entities.TherapistProfile{
		ID:          "t-many",
		Specialties: specialties,
		Status:      entities.ProfileStatusVerified,
		IsPublic:    true,
	}

	p, err := fromDocument(toDocument(profile))
	require.NoError(t, err)
	assert.Equal(t, specialties, p.Specialties)
	assert.Contains(t, p.Specialties, "specialty-149")
}
