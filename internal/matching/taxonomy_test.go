package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

func TestIdentityTaxonomy(t *testing.T) {
	var tax IdentityTaxonomy

	assert.Equal(t, []string{"Angst"}, tax.SpecialtiesFor("Angst"))
	assert.Empty(t, tax.Catalog())
}

func TestStaticTaxonomy(t *testing.T) {
	tax := NewStaticTaxonomy([]entities.ProblemArea{
		{Value: "trauma", Label: "Trauma & PTBS", SortOrder: 2, Specialties: []string{"PTBS"}},
		{Value: "angst", Label: "Angst & Panik", SortOrder: 1, Specialties: []string{"Panikattacken"}},
	})

	t.Run("catalog is sorted by display order", func(t *testing.T) {
		catalog := tax.Catalog()
		require.Len(t, catalog, 2)
		assert.Equal(t, "angst", catalog[0].Value)
		assert.Equal(t, "trauma", catalog[1].Value)
	})

	t.Run("label and value both resolve", func(t *testing.T) {
		assert.Equal(t, []string{"angst & panik", "angst", "Panikattacken"}, tax.SpecialtiesFor("angst & panik"))
		assert.Equal(t, []string{"ANGST", "angst", "Panikattacken"}, tax.SpecialtiesFor("ANGST"))
	})

	t.Run("unknown areas map to themselves", func(t *testing.T) {
		assert.Equal(t, []string{"Schlaf"}, tax.SpecialtiesFor("Schlaf"))
		_, ok := tax.Lookup("Schlaf")
		assert.False(t, ok)
	})

	t.Run("lookup", func(t *testing.T) {
		area, ok := tax.Lookup("Trauma & PTBS")
		require.True(t, ok)
		assert.Equal(t, "trauma", area.Value)
	})
}

func TestDefaultTaxonomy_ValuesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, area := range DefaultTaxonomy().Catalog() {
		assert.False(t, seen[area.Value], area.Value)
		seen[area.Value] = true
		assert.NotEmpty(t, area.Label)
		assert.NotEmpty(t, area.Specialties)
	}
}

func TestStaticLocationResolver(t *testing.T) {
	resolver := StaticLocationResolver{"1010": vienna, "innsbruck": innsbruck}

	lat, lon, ok := resolver.Resolve("1010", "Graz")
	require.True(t, ok)
	assert.Equal(t, vienna.Latitude, lat)
	assert.Equal(t, vienna.Longitude, lon)

	lat, _, ok = resolver.Resolve("", " Innsbruck ")
	require.True(t, ok)
	assert.Equal(t, innsbruck.Latitude, lat)

	_, _, ok = resolver.Resolve("9999", "")
	assert.False(t, ok)
}
