package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

func optionByValue(t *testing.T, options []entities.FilterOption, value string) entities.FilterOption {
	t.Helper()
	for _, o := range options {
		if o.Value == value {
			return o
		}
	}
	require.Failf(t, "option not found", "value %q", value)
	return entities.FilterOption{}
}

func TestAggregator_Counts(t *testing.T) {
	engine := NewEngine()
	req := baseRequest("Angst")
	req.Format = entities.FormatOnline

	options, eligible := engine.FilterOptions(req, population())

	assert.Equal(t, 2, eligible)

	// Substituting the format keeps every other filter fixed.
	format := options[entities.DimensionFormat]
	assert.Equal(t, 2, optionByValue(t, format, "ONLINE").Count)
	assert.Equal(t, 3, optionByValue(t, format, "IN_PERSON").Count)
	assert.Equal(t, 3, optionByValue(t, format, "BOTH").Count)

	insurance := options[entities.DimensionInsurance]
	assert.Equal(t, 2, optionByValue(t, insurance, "PUBLIC").Count)
	assert.Equal(t, 1, optionByValue(t, insurance, "SELF_PAY").Count)
	assert.Equal(t, 2, optionByValue(t, insurance, "ANY").Count)
	private := optionByValue(t, insurance, "PRIVATE")
	assert.Equal(t, 0, private.Count)
	assert.False(t, private.Available)

	// Adding a language can only widen the current selection.
	languages := options[entities.DimensionLanguage]
	assert.Equal(t, 2, optionByValue(t, languages, "Deutsch").Count)
	assert.Equal(t, 2, optionByValue(t, languages, "Englisch").Count)
	assert.Equal(t, 2, optionByValue(t, languages, "Türkisch").Count)

	areas := options[entities.DimensionProblemArea]
	assert.Equal(t, 2, optionByValue(t, areas, "Angst").Count)
	assert.Equal(t, 2, optionByValue(t, areas, "Burnout").Count)
	assert.Equal(t, 2, optionByValue(t, areas, "Depression").Count)
	assert.Equal(t, 2, optionByValue(t, areas, "Trauma").Count)
}

func TestAggregator_PartialRequestWithoutProblemArea(t *testing.T) {
	engine := NewEngine(WithTaxonomy(DefaultTaxonomy()))
	profiles := []*entities.TherapistProfile{
		listed("a", func(p *entities.TherapistProfile) { p.Specialties = []string{"Panikattacken"} }),
		listed("b", func(p *entities.TherapistProfile) { p.Specialties = []string{"PTBS", "Soziale Angst"} }),
		listed("c", func(p *entities.TherapistProfile) { p.Specialties = []string{"Insomnie"} }),
	}

	options, eligible := engine.FilterOptions(baseRequest(), profiles)

	assert.Equal(t, 3, eligible)
	areas := options[entities.DimensionProblemArea]
	require.Len(t, areas, len(DefaultTaxonomy().Catalog()))

	assert.Equal(t, entities.FilterOption{Value: "angst", Label: "Angst & Panik", Count: 2, Available: true}, areas[0])
	assert.Equal(t, "trauma", areas[1].Value)
	assert.Equal(t, "schlaf", areas[2].Value)
	assert.Equal(t, 1, areas[2].Count)

	// Zero-count areas keep catalog order.
	assert.Equal(t, "depression", areas[3].Value)
	assert.False(t, areas[3].Available)
}

func TestAggregator_OrderedByCountThenCatalog(t *testing.T) {
	options, _ := NewEngine().FilterOptions(baseRequest("Angst"), population())

	for dim, opts := range options {
		for i := 1; i < len(opts); i++ {
			assert.GreaterOrEqual(t, opts[i-1].Count, opts[i].Count, "dimension %s", dim)
		}
	}

	formats := options[entities.DimensionFormat]
	assert.Equal(t, []string{"IN_PERSON", "BOTH", "ONLINE"}, []string{formats[0].Value, formats[1].Value, formats[2].Value})
}

func TestAggregator_LanguageCatalogIncludesPopulationAndRequest(t *testing.T) {
	req := baseRequest("Angst")
	req.Languages = []string{"Deutsch", "Klingonisch"}

	options, _ := NewEngine(WithLanguageCatalog([]string{"Deutsch", "Englisch"})).FilterOptions(req, population())

	values := map[string]bool{}
	for _, o := range options[entities.DimensionLanguage] {
		values[o.Value] = true
	}
	assert.Equal(t, map[string]bool{"Deutsch": true, "Englisch": true, "Türkisch": true, "Klingonisch": true}, values)
}

// Every option count must equal the size of the eligible set once that value
// is applied to the request, so an unavailable option never yields results.
func TestAggregator_CountsMatchAppliedFilter(t *testing.T) {
	requests := map[string]*entities.MatchRequest{
		"anxiety":  baseRequest("Angst"),
		"partial":  baseRequest(),
		"taxonomy": baseRequest("angst", "trauma"),
		"constrained": func() *entities.MatchRequest {
			r := baseRequest("Angst")
			r.Insurance = entities.InsuranceSelfPay
			r.Format = entities.FormatInPerson
			r.MaxWaitWeeks = ptrInt(8)
			r.Location = &entities.GeoConstraint{Latitude: ptrFloat(vienna.Latitude), Longitude: ptrFloat(vienna.Longitude), MaxDistanceKm: ptrFloat(250)}
			return r
		}(),
	}

	engine := NewEngine(WithTaxonomy(DefaultTaxonomy()))
	for name, req := range requests {
		options, _ := engine.FilterOptions(req, population())

		for dim, opts := range options {
			for _, o := range opts {
				applied := *req
				switch dim {
				case entities.DimensionLanguage:
					applied.Languages = append(append([]string{}, req.Languages...), o.Value)
				case entities.DimensionProblemArea:
					applied.ProblemAreas = append(append([]string{}, req.ProblemAreas...), o.Value)
				case entities.DimensionInsurance:
					applied.Insurance = entities.InsuranceType(o.Value)
				case entities.DimensionFormat:
					applied.Format = entities.Format(o.Value)
				}

				got := len(engine.Eligible(&applied, population()))
				assert.Equal(t, o.Count, got, "%s: %s=%s", name, dim, o.Value)
				if !o.Available {
					assert.Zero(t, got, "%s: %s=%s", name, dim, o.Value)
				}
			}
		}
	}
}
