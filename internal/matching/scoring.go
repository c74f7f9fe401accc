package matching

import (
	"math"
	"sort"

	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

// Scorer assigns hard and soft scores to eligible candidates
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer. Invalid weights fall back to the defaults.
func NewScorer(weights Weights) *Scorer {
	if err := weights.Validate(); err != nil {
		weights = DefaultWeights()
	}
	return &Scorer{weights: weights}
}

// Weights returns the weights in effect
func (s *Scorer) Weights() Weights {
	return s.weights
}

type criterionScore struct {
	name   string
	points float64
}

// Score computes the score of a single eligible candidate
func (s *Scorer) Score(req *entities.MatchRequest, e Eligible) entities.ScoredCandidate {
	w := s.weights
	var hard, soft []criterionScore

	for _, name := range e.MatchedHard {
		var points float64
		switch name {
		case CriterionProblemArea:
			points = w.ProblemArea * float64(e.Overlap)
		case CriterionLanguagePrimary:
			points = w.LanguagePrimary
		case CriterionLanguageFallback:
			points = w.LanguageFallback
		case CriterionInsurance:
			points = w.InsuranceExact
		case CriterionInsuranceTolerant:
			points = w.InsuranceTolerant
		}
		hard = append(hard, criterionScore{name: name, points: points})
	}

	p := e.Profile
	prefs := req.Preferences

	if fraction := methodOverlap(prefs.Methods, p.Modalities); fraction > 0 {
		soft = append(soft, criterionScore{name: CriterionMethods, points: w.Methods * fraction})
	}
	if prefs.Gender != "" && prefs.Gender != entities.GenderAny && p.Gender != nil {
		if g, ok := ParseGender(*p.Gender); ok && g == prefs.Gender {
			soft = append(soft, criterionScore{name: CriterionGender, points: w.Gender})
		}
	}
	if prefs.AgeRange != "" && prefs.AgeRange != entities.AgeRangeAny && p.YearsExperience != nil {
		if ageRangeFor(*p.YearsExperience) == prefs.AgeRange {
			soft = append(soft, criterionScore{name: CriterionAgeRange, points: w.AgeRange})
		}
	}
	if prefs.CommunicationStyle != "" && prefs.CommunicationStyle != entities.CommunicationAny && p.CommunicationStyle != nil {
		if cs, ok := ParseCommunicationStyle(*p.CommunicationStyle); ok && cs == prefs.CommunicationStyle {
			soft = append(soft, criterionScore{name: CriterionCommunicationStyle, points: w.CommunicationStyle})
		}
	}
	if prefs.PriceMax != nil {
		if lowest := lowestPrice(p); lowest != nil && *lowest <= *prefs.PriceMax {
			soft = append(soft, criterionScore{name: CriterionPrice, points: w.Price})
		}
	}
	if e.DistanceKm != nil {
		bonus := w.Proximity / (1 + *e.DistanceKm/w.ProximityHalfKm)
		if bonus > 0 {
			soft = append(soft, criterionScore{name: CriterionProximity, points: bonus})
		}
	}

	hardScore := sumPoints(hard)
	softScore := sumPoints(soft)

	all := append(hard, soft...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].points > all[j].points
	})
	matched := make([]string, len(all))
	for i, c := range all {
		matched[i] = c.name
	}

	return entities.ScoredCandidate{
		Profile:         p,
		HardScore:       round6(hardScore),
		SoftScore:       round6(softScore),
		TotalScore:      round6(hardScore + softScore),
		MatchedCriteria: matched,
		DistanceKm:      e.DistanceKm,
	}
}

// ScoreAll scores every eligible candidate, preserving input order
func (s *Scorer) ScoreAll(req *entities.MatchRequest, eligible []Eligible) []entities.ScoredCandidate {
	out := make([]entities.ScoredCandidate, 0, len(eligible))
	for _, e := range eligible {
		out = append(out, s.Score(req, e))
	}
	return out
}

// methodOverlap is the fraction of preferred methods the profile offers
func methodOverlap(preferred, modalities []string) float64 {
	if len(preferred) == 0 || len(modalities) == 0 {
		return 0
	}
	offered := keySet(modalities)
	wanted := keySet(preferred)
	if len(wanted) == 0 {
		return 0
	}
	hits := 0
	for k := range wanted {
		if _, ok := offered[k]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(wanted))
}

func lowestPrice(p *entities.TherapistProfile) *int {
	if p.PriceMin != nil {
		return p.PriceMin
	}
	return p.PriceMax
}

func sumPoints(scores []criterionScore) float64 {
	var total float64
	for _, c := range scores {
		total += c.points
	}
	return total
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
