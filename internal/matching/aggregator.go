package matching

import (
	"sort"

	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

// DefaultLanguageCatalog lists the languages offered in the search UI before
// any population-specific ones
var DefaultLanguageCatalog = []string{
	"Deutsch", "Englisch", "Türkisch", "Bosnisch/Kroatisch/Serbisch", "Französisch",
	"Spanisch", "Italienisch", "Polnisch", "Russisch", "Ungarisch", "Arabisch", "Persisch",
}

var insuranceOptions = []struct {
	value entities.InsuranceType
	label string
}{
	{entities.InsurancePublic, "Gesetzliche Krankenversicherung"},
	{entities.InsurancePrivate, "Private Krankenversicherung"},
	{entities.InsuranceSelfPay, "Selbstzahler"},
	{entities.InsuranceAny, "Alle"},
}

var formatOptions = []struct {
	value entities.Format
	label string
}{
	{entities.FormatOnline, "Online"},
	{entities.FormatInPerson, "Vor Ort"},
	{entities.FormatBoth, "Online & vor Ort"},
}

// Aggregator computes per-value result counts for the filter UI.
// Multi-select dimensions count the effect of adding a value, single-select
// dimensions the effect of substituting it.
type Aggregator struct {
	taxonomy  Taxonomy
	resolver  LocationResolver
	languages []string
}

// NewAggregator creates an aggregator. A nil taxonomy means identity mapping.
func NewAggregator(taxonomy Taxonomy, resolver LocationResolver, languageCatalog []string) *Aggregator {
	if taxonomy == nil {
		taxonomy = IdentityTaxonomy{}
	}
	return &Aggregator{taxonomy: taxonomy, resolver: resolver, languages: languageCatalog}
}

type catalogValue struct {
	value string
	label string
}

// Aggregate returns the options per dimension and the size of the current eligible set
func (a *Aggregator) Aggregate(req *entities.MatchRequest, profiles []*entities.TherapistProfile) (entities.FilterOptions, int) {
	cr := compile(req, a.taxonomy, a.resolver)
	evs := make([]*evaluation, 0, len(profiles))
	eligible := 0
	for _, p := range profiles {
		if p == nil {
			continue
		}
		ev := cr.evaluate(p)
		if ev.passes(allConstraints) {
			eligible++
		}
		evs = append(evs, ev)
	}

	options := entities.FilterOptions{
		entities.DimensionLanguage:    a.languageOptions(req, evs),
		entities.DimensionProblemArea: a.problemAreaOptions(cr, evs),
		entities.DimensionInsurance:   insuranceOptionsFor(evs),
		entities.DimensionFormat:      formatOptionsFor(evs),
	}
	return options, eligible
}

// relaxed returns the candidates passing every constraint except the given one
func relaxed(evs []*evaluation, c constraint) []*evaluation {
	mask := allConstraints &^ c
	out := make([]*evaluation, 0, len(evs))
	for _, ev := range evs {
		if ev.passes(mask) {
			out = append(out, ev)
		}
	}
	return out
}

func (a *Aggregator) languageOptions(req *entities.MatchRequest, evs []*evaluation) []entities.FilterOption {
	var population []string
	for _, ev := range evs {
		population = append(population, ev.profile.Languages...)
	}
	sort.Strings(population)

	var values []catalogValue
	for _, v := range dedupe(concat(a.languages, population, req.Languages)) {
		values = append(values, catalogValue{value: v, label: v})
	}

	base := relaxed(evs, constraintLanguage)
	return buildOptions(values, func(v string) int {
		key := normalizeKey(v)
		n := 0
		for _, ev := range base {
			if ev.mask&constraintLanguage != 0 {
				n++
				continue
			}
			if _, ok := ev.languages[key]; ok {
				n++
			}
		}
		return n
	})
}

func (a *Aggregator) problemAreaOptions(cr *compiledRequest, evs []*evaluation) []entities.FilterOption {
	var values []catalogValue
	if catalog := a.taxonomy.Catalog(); len(catalog) > 0 {
		for _, area := range catalog {
			values = append(values, catalogValue{value: area.Value, label: area.Label})
		}
	} else {
		var population []string
		for _, ev := range evs {
			population = append(population, ev.profile.Specialties...)
		}
		sort.Strings(population)
		for _, v := range dedupe(concat(population, cr.req.ProblemAreas)) {
			values = append(values, catalogValue{value: v, label: v})
		}
	}

	// With no current problem area the dimension is unconstrained, so adding
	// a value makes it the only one.
	unconstrained := len(cr.areaTags) == 0

	base := relaxed(evs, constraintProblemArea)
	return buildOptions(values, func(v string) int {
		tags := keySet(a.taxonomy.SpecialtiesFor(v))
		n := 0
		for _, ev := range base {
			if !unconstrained && ev.mask&constraintProblemArea != 0 {
				n++
				continue
			}
			if intersects(tags, ev.specialties) {
				n++
			}
		}
		return n
	})
}

func insuranceOptionsFor(evs []*evaluation) []entities.FilterOption {
	values := make([]catalogValue, 0, len(insuranceOptions))
	for _, o := range insuranceOptions {
		values = append(values, catalogValue{value: string(o.value), label: o.label})
	}

	base := relaxed(evs, constraintInsurance)
	return buildOptions(values, func(v string) int {
		n := 0
		for _, ev := range base {
			if insurancePasses(ev, entities.InsuranceType(v)) {
				n++
			}
		}
		return n
	})
}

func formatOptionsFor(evs []*evaluation) []entities.FilterOption {
	values := make([]catalogValue, 0, len(formatOptions))
	for _, o := range formatOptions {
		values = append(values, catalogValue{value: string(o.value), label: o.label})
	}

	base := relaxed(evs, constraintFormat)
	return buildOptions(values, func(v string) int {
		n := 0
		for _, ev := range base {
			if formatPasses(ev.profile, entities.Format(v)) {
				n++
			}
		}
		return n
	})
}

// buildOptions counts every value and orders by count, keeping catalog order for ties
func buildOptions(values []catalogValue, count func(string) int) []entities.FilterOption {
	out := make([]entities.FilterOption, 0, len(values))
	for _, v := range values {
		n := count(v.value)
		out = append(out, entities.FilterOption{
			Value:     v.value,
			Label:     v.label,
			Count:     n,
			Available: n > 0,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
