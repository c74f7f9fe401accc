package matching

import (
	"fmt"
	"sort"

	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

// MaxHighlights is the number of criterion labels attached to a result
const MaxHighlights = 3

var criterionLabels = map[string]string{
	CriterionProblemArea:        "Spezialisiert auf Ihr Anliegen",
	CriterionLanguagePrimary:    "Spricht Ihre Sprache",
	CriterionLanguageFallback:   "Spricht eine Ihrer Sprachen",
	CriterionInsurance:          "Passt zu Ihrer Versicherung",
	CriterionInsuranceTolerant:  "Akzeptiert alle Versicherungen",
	CriterionFormat:             "Gewünschtes Format",
	CriterionDistance:           "In Ihrer Nähe",
	CriterionLocation:           "In Ihrer Stadt",
	CriterionWaitTime:           "Kurze Wartezeit",
	CriterionMethods:            "Bevorzugte Methoden",
	CriterionGender:             "Wunschgeschlecht",
	CriterionAgeRange:           "Passende Erfahrung",
	CriterionCommunicationStyle: "Passender Kommunikationsstil",
	CriterionPrice:              "Im Budget",
	CriterionProximity:          "Kurzer Anfahrtsweg",
}

// CriterionLabel returns the display label of a criterion
func CriterionLabel(criterion string) string {
	if label, ok := criterionLabels[criterion]; ok {
		return label
	}
	return criterion
}

// SortCandidates orders candidates by total score, then distance, wait time and ID
func SortCandidates(candidates []entities.ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		switch {
		case a.DistanceKm != nil && b.DistanceKm != nil:
			if *a.DistanceKm != *b.DistanceKm {
				return *a.DistanceKm < *b.DistanceKm
			}
		case a.DistanceKm != nil:
			return true
		case b.DistanceKm != nil:
			return false
		}
		if wa, wb := a.Profile.WaitWeeks(), b.Profile.WaitWeeks(); wa != wb {
			return wa < wb
		}
		return a.Profile.ID < b.Profile.ID
	})
}

// Rank sorts candidates, truncates to limit and assembles results
func Rank(candidates []entities.ScoredCandidate, limit int) []entities.MatchResult {
	sorted := make([]entities.ScoredCandidate, len(candidates))
	copy(sorted, candidates)
	SortCandidates(sorted)

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	results := make([]entities.MatchResult, 0, len(sorted))
	for _, c := range sorted {
		results = append(results, entities.MatchResult{
			ProfileID:       c.Profile.ID,
			Slug:            c.Profile.Slug,
			DisplayName:     c.Profile.DisplayName,
			TotalScore:      c.TotalScore,
			HardScore:       c.HardScore,
			SoftScore:       c.SoftScore,
			MatchedCriteria: append([]string(nil), c.MatchedCriteria...),
			Highlights:      highlights(c),
			DistanceKm:      c.DistanceKm,
		})
	}
	return results
}

func highlights(c entities.ScoredCandidate) []string {
	out := make([]string, 0, MaxHighlights)
	for _, name := range c.MatchedCriteria {
		if len(out) == MaxHighlights {
			break
		}
		label := CriterionLabel(name)
		if name == CriterionProximity && c.DistanceKm != nil {
			label = fmt.Sprintf("%.1f km entfernt", *c.DistanceKm)
		}
		out = append(out, label)
	}
	return out
}
