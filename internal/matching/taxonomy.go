package matching

import (
	"sort"

	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

// Taxonomy translates client-facing problem areas into therapist specialty tags
type Taxonomy interface {
	// SpecialtiesFor returns the specialty tags a problem area maps to.
	// Unknown areas map to themselves.
	SpecialtiesFor(problemArea string) []string

	// Catalog returns the selectable problem areas in display order
	Catalog() []entities.ProblemArea
}

// IdentityTaxonomy maps every problem area onto the specialty of the same name
type IdentityTaxonomy struct{}

func (IdentityTaxonomy) SpecialtiesFor(problemArea string) []string {
	return []string{problemArea}
}

func (IdentityTaxonomy) Catalog() []entities.ProblemArea {
	return nil
}

// StaticTaxonomy is an in-memory taxonomy; areas are matched by value or label
type StaticTaxonomy struct {
	areas []entities.ProblemArea
	index map[string]int
}

// NewStaticTaxonomy builds a taxonomy from a catalog
func NewStaticTaxonomy(areas []entities.ProblemArea) *StaticTaxonomy {
	sorted := make([]entities.ProblemArea, len(areas))
	copy(sorted, areas)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SortOrder != sorted[j].SortOrder {
			return sorted[i].SortOrder < sorted[j].SortOrder
		}
		return sorted[i].Value < sorted[j].Value
	})

	t := &StaticTaxonomy{areas: sorted, index: make(map[string]int, len(sorted)*2)}
	for i, a := range sorted {
		if k := normalizeKey(a.Value); k != "" {
			t.index[k] = i
		}
		if k := normalizeKey(a.Label); k != "" {
			if _, taken := t.index[k]; !taken {
				t.index[k] = i
			}
		}
	}
	return t
}

func (t *StaticTaxonomy) SpecialtiesFor(problemArea string) []string {
	i, ok := t.index[normalizeKey(problemArea)]
	if !ok {
		return []string{problemArea}
	}
	a := t.areas[i]
	tags := make([]string, 0, len(a.Specialties)+2)
	tags = append(tags, problemArea, a.Value)
	tags = append(tags, a.Specialties...)
	return tags
}

func (t *StaticTaxonomy) Catalog() []entities.ProblemArea {
	out := make([]entities.ProblemArea, len(t.areas))
	copy(out, t.areas)
	return out
}

// Lookup returns the catalog entry for a value or label
func (t *StaticTaxonomy) Lookup(problemArea string) (entities.ProblemArea, bool) {
	i, ok := t.index[normalizeKey(problemArea)]
	if !ok {
		return entities.ProblemArea{}, false
	}
	return t.areas[i], true
}

// DefaultTaxonomy is the built-in German-language catalog used when no
// mapping table is configured
func DefaultTaxonomy() *StaticTaxonomy {
	return NewStaticTaxonomy([]entities.ProblemArea{
		{Value: "angst", Label: "Angst & Panik", SortOrder: 10, Specialties: []string{"Angststörung", "Panikattacken", "Phobien", "Soziale Angst"}},
		{Value: "depression", Label: "Depression", SortOrder: 20, Specialties: []string{"Depressive Verstimmung", "Antriebslosigkeit"}},
		{Value: "burnout", Label: "Burnout & Stress", SortOrder: 30, Specialties: []string{"Stress", "Erschöpfung", "Arbeitsbelastung"}},
		{Value: "trauma", Label: "Trauma & PTBS", SortOrder: 40, Specialties: []string{"PTBS", "Traumafolgestörung", "Gewalterfahrung"}},
		{Value: "beziehung", Label: "Beziehung & Partnerschaft", SortOrder: 50, Specialties: []string{"Paartherapie", "Partnerschaft", "Trennung"}},
		{Value: "selbstwert", Label: "Selbstwert", SortOrder: 60, Specialties: []string{"Selbstzweifel", "Selbstbewusstsein"}},
		{Value: "trauer", Label: "Trauer & Verlust", SortOrder: 70, Specialties: []string{"Trauerbegleitung", "Verlust"}},
		{Value: "sucht", Label: "Sucht", SortOrder: 80, Specialties: []string{"Abhängigkeit", "Alkohol", "Spielsucht"}},
		{Value: "essstoerung", Label: "Essstörungen", SortOrder: 90, Specialties: []string{"Essstörung", "Anorexie", "Bulimie", "Binge Eating"}},
		{Value: "zwang", Label: "Zwänge", SortOrder: 100, Specialties: []string{"Zwangsstörung", "OCD"}},
		{Value: "adhs", Label: "ADHS", SortOrder: 110, Specialties: []string{"ADHS", "ADS", "Konzentration"}},
		{Value: "schlaf", Label: "Schlafprobleme", SortOrder: 120, Specialties: []string{"Schlafstörung", "Insomnie"}},
	})
}

// LocationResolver turns a postal code or city into coordinates without I/O
type LocationResolver interface {
	Resolve(postalCode, city string) (lat, lon float64, ok bool)
}

// Point is a resolved coordinate pair
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StaticLocationResolver resolves from a postal-code or city keyed table
type StaticLocationResolver map[string]Point

// NewStaticLocationResolver builds a resolver with case- and whitespace-insensitive keys
func NewStaticLocationResolver(points map[string]Point) StaticLocationResolver {
	r := make(StaticLocationResolver, len(points))
	for key, p := range points {
		if k := normalizeKey(key); k != "" {
			r[k] = p
		}
	}
	return r
}

func (r StaticLocationResolver) Resolve(postalCode, city string) (float64, float64, bool) {
	for _, key := range []string{postalCode, city} {
		if k := normalizeKey(key); k != "" {
			if p, ok := r[k]; ok {
				return p.Latitude, p.Longitude, true
			}
		}
	}
	return 0, 0, false
}
