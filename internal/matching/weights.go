package matching

import (
	"encoding/json"
	"fmt"
	"os"
)

// Weights defines the score contributed by each criterion.
// Hard weights must each exceed the soft ceiling so that no combination of
// soft preferences can outrank a strictly better hard match.
type Weights struct {
	ProblemArea      float64 `json:"problem_area"`
	LanguagePrimary  float64 `json:"language_primary"`
	LanguageFallback float64 `json:"language_fallback"`
	InsuranceExact   float64 `json:"insurance_exact"`
	// InsuranceTolerant applies when the profile accepts any insurance type.
	InsuranceTolerant float64 `json:"insurance_tolerant"`

	Methods            float64 `json:"methods"`
	Gender             float64 `json:"gender"`
	AgeRange           float64 `json:"age_range"`
	CommunicationStyle float64 `json:"communication_style"`
	Price              float64 `json:"price"`
	Proximity          float64 `json:"proximity"`
	// ProximityHalfKm is the distance at which the proximity bonus halves.
	ProximityHalfKm float64 `json:"proximity_half_km"`
}

// DefaultWeights returns the production weighting
func DefaultWeights() Weights {
	return Weights{
		ProblemArea:       1000,
		LanguagePrimary:   500,
		LanguageFallback:  250,
		InsuranceExact:    250,
		InsuranceTolerant: 125,

		Methods:            30,
		Gender:             15,
		AgeRange:           10,
		CommunicationStyle: 15,
		Price:              15,
		Proximity:          15,
		ProximityHalfKm:    10,
	}
}

// SoftCeiling is the highest soft score any candidate can reach
func (w Weights) SoftCeiling() float64 {
	return w.Methods + w.Gender + w.AgeRange + w.CommunicationStyle + w.Price + w.Proximity
}

// Validate checks non-negativity and hard dominance
func (w Weights) Validate() error {
	all := map[string]float64{
		"problem_area":        w.ProblemArea,
		"language_primary":    w.LanguagePrimary,
		"language_fallback":   w.LanguageFallback,
		"insurance_exact":     w.InsuranceExact,
		"insurance_tolerant":  w.InsuranceTolerant,
		"methods":             w.Methods,
		"gender":              w.Gender,
		"age_range":           w.AgeRange,
		"communication_style": w.CommunicationStyle,
		"price":               w.Price,
		"proximity":           w.Proximity,
	}
	for name, v := range all {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative", name)
		}
	}
	if w.ProximityHalfKm <= 0 {
		return fmt.Errorf("proximity_half_km must be positive")
	}

	ceiling := w.SoftCeiling()
	hard := []struct {
		name  string
		value float64
	}{
		{"problem_area", w.ProblemArea},
		{"language_primary", w.LanguagePrimary},
		{"language_fallback", w.LanguageFallback},
		{"insurance_exact", w.InsuranceExact},
		{"insurance_tolerant", w.InsuranceTolerant},
	}
	for _, h := range hard {
		if h.value <= ceiling {
			return fmt.Errorf("%s weight %.2f must exceed soft ceiling %.2f", h.name, h.value, ceiling)
		}
	}
	if w.LanguagePrimary-w.LanguageFallback <= ceiling {
		return fmt.Errorf("language_primary must exceed language_fallback by more than soft ceiling %.2f", ceiling)
	}
	if w.InsuranceExact-w.InsuranceTolerant <= ceiling {
		return fmt.Errorf("insurance_exact must exceed insurance_tolerant by more than soft ceiling %.2f", ceiling)
	}
	return nil
}

// LoadWeightsFromFile loads weights from a JSON file on top of the defaults
func LoadWeightsFromFile(path string) (Weights, error) {
	w := DefaultWeights()
	b, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return w, fmt.Errorf("unmarshal weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return DefaultWeights(), fmt.Errorf("invalid weights in %s: %w", path, err)
	}
	return w, nil
}
