package matching

import (
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/pkg/geo"
)

// constraint is a bit in a candidate's hard-constraint mask
type constraint uint8

const (
	constraintProblemArea constraint = 1 << iota
	constraintLanguage
	constraintInsurance
	constraintFormat
	constraintGeography
	constraintWaitTime
	constraintVerification

	allConstraints = constraintProblemArea | constraintLanguage | constraintInsurance |
		constraintFormat | constraintGeography | constraintWaitTime | constraintVerification
)

// Criterion names recorded in matched criteria
const (
	CriterionProblemArea        = "problem_area"
	CriterionLanguagePrimary    = "language_primary"
	CriterionLanguageFallback   = "language_fallback"
	CriterionInsurance          = "insurance"
	CriterionInsuranceTolerant  = "insurance_tolerant"
	CriterionFormat             = "format"
	CriterionDistance           = "distance"
	CriterionLocation           = "location"
	CriterionWaitTime           = "wait_time"
	CriterionMethods            = "methods"
	CriterionGender             = "gender"
	CriterionAgeRange           = "age_range"
	CriterionCommunicationStyle = "communication_style"
	CriterionPrice              = "price"
	CriterionProximity          = "proximity"
)

// Eligible is a profile that passed every hard constraint
type Eligible struct {
	Profile *entities.TherapistProfile
	// MatchedHard lists the hard criteria the request actually constrained.
	MatchedHard []string
	DistanceKm  *float64
	// Overlap is the number of requested problem areas the profile covers.
	Overlap int
	// PrimaryLanguage is set when the profile speaks the first requested language.
	PrimaryLanguage bool
}

// compiledRequest holds per-request lookup structures shared by all candidates
type compiledRequest struct {
	req      *entities.MatchRequest
	taxonomy Taxonomy

	areaTags  []map[string]struct{}
	languages []string
	origin    *Point
	city      string
	postal    string
}

func compile(req *entities.MatchRequest, taxonomy Taxonomy, resolver LocationResolver) *compiledRequest {
	if taxonomy == nil {
		taxonomy = IdentityTaxonomy{}
	}
	cr := &compiledRequest{req: req, taxonomy: taxonomy}

	for _, area := range req.ProblemAreas {
		cr.areaTags = append(cr.areaTags, keySet(taxonomy.SpecialtiesFor(area)))
	}
	for _, lang := range req.Languages {
		cr.languages = append(cr.languages, normalizeKey(lang))
	}

	if loc := req.Location; loc != nil {
		switch {
		case loc.HasCoordinates():
			cr.origin = &Point{Latitude: *loc.Latitude, Longitude: *loc.Longitude}
		case resolver != nil:
			if lat, lon, ok := resolver.Resolve(loc.PostalCode, loc.City); ok {
				cr.origin = &Point{Latitude: lat, Longitude: lon}
			}
		}
		if cr.origin == nil {
			cr.city = normalizeKey(loc.City)
			cr.postal = normalizeKey(loc.PostalCode)
		}
	}
	return cr
}

// evaluation is the outcome of checking one profile against a compiled request
type evaluation struct {
	profile      *entities.TherapistProfile
	mask         constraint
	overlap      int
	languageRank int
	distanceKm   *float64

	specialties map[string]struct{}
	languages   map[string]struct{}
	insurance   map[entities.InsuranceType]struct{}
}

func (e *evaluation) passes(mask constraint) bool {
	return e.mask&mask == mask
}

func (cr *compiledRequest) evaluate(p *entities.TherapistProfile) *evaluation {
	ev := &evaluation{
		profile:      p,
		languageRank: -1,
		specialties:  keySet(p.Specialties),
		languages:    keySet(p.Languages),
		insurance:    insuranceSet(p.AcceptedInsurance),
	}

	if p.IsListed() {
		ev.mask |= constraintVerification
	}

	for _, tags := range cr.areaTags {
		if intersects(tags, ev.specialties) {
			ev.overlap++
		}
	}
	if len(cr.areaTags) == 0 || ev.overlap > 0 {
		ev.mask |= constraintProblemArea
	}

	for i, lang := range cr.languages {
		if _, ok := ev.languages[lang]; ok {
			ev.languageRank = i
			break
		}
	}
	if ev.languageRank >= 0 {
		ev.mask |= constraintLanguage
	}

	if insurancePasses(ev, cr.req.Insurance) {
		ev.mask |= constraintInsurance
	}
	if formatPasses(p, cr.req.Format) {
		ev.mask |= constraintFormat
	}

	if cr.origin != nil && p.HasCoordinates() {
		if d, err := geo.DistanceKm(cr.origin.Latitude, cr.origin.Longitude, *p.Latitude, *p.Longitude); err == nil {
			ev.distanceKm = &d
		}
	}
	if cr.geographyPasses(ev) {
		ev.mask |= constraintGeography
	}

	if cr.req.MaxWaitWeeks == nil || p.WaitWeeks() <= *cr.req.MaxWaitWeeks {
		ev.mask |= constraintWaitTime
	}

	return ev
}

func (cr *compiledRequest) geographyPasses(ev *evaluation) bool {
	loc := cr.req.Location
	if loc == nil {
		return true
	}
	if cr.origin != nil {
		if loc.MaxDistanceKm == nil {
			return true
		}
		return ev.distanceKm != nil && *ev.distanceKm <= *loc.MaxDistanceKm
	}
	if cr.postal != "" && normalizeKey(ev.profile.PostalCode) != cr.postal {
		return false
	}
	if cr.city != "" && normalizeKey(ev.profile.City) != cr.city {
		return false
	}
	return true
}

// covers reports whether the profile matches a single problem area
func (cr *compiledRequest) covers(ev *evaluation, problemArea string) bool {
	return intersects(keySet(cr.taxonomy.SpecialtiesFor(problemArea)), ev.specialties)
}

func (cr *compiledRequest) eligible(ev *evaluation) Eligible {
	e := Eligible{
		Profile:         ev.profile,
		DistanceKm:      ev.distanceKm,
		Overlap:         ev.overlap,
		PrimaryLanguage: ev.languageRank == 0,
	}

	if ev.overlap > 0 {
		e.MatchedHard = append(e.MatchedHard, CriterionProblemArea)
	}
	if ev.languageRank == 0 {
		e.MatchedHard = append(e.MatchedHard, CriterionLanguagePrimary)
	} else {
		e.MatchedHard = append(e.MatchedHard, CriterionLanguageFallback)
	}
	if want := cr.req.Insurance; want != entities.InsuranceAny {
		if _, exact := ev.insurance[want]; exact {
			e.MatchedHard = append(e.MatchedHard, CriterionInsurance)
		} else {
			e.MatchedHard = append(e.MatchedHard, CriterionInsuranceTolerant)
		}
	}
	if cr.req.Format != entities.FormatBoth {
		e.MatchedHard = append(e.MatchedHard, CriterionFormat)
	}
	if loc := cr.req.Location; loc != nil {
		switch {
		case cr.origin != nil && loc.MaxDistanceKm != nil:
			e.MatchedHard = append(e.MatchedHard, CriterionDistance)
		case cr.origin == nil && (cr.city != "" || cr.postal != ""):
			e.MatchedHard = append(e.MatchedHard, CriterionLocation)
		}
	}
	if cr.req.MaxWaitWeeks != nil {
		e.MatchedHard = append(e.MatchedHard, CriterionWaitTime)
	}
	return e
}

// insurancePasses accepts an exact match or a profile that takes any insurance
func insurancePasses(ev *evaluation, want entities.InsuranceType) bool {
	if want == entities.InsuranceAny {
		return true
	}
	if _, ok := ev.insurance[want]; ok {
		return true
	}
	_, tolerant := ev.insurance[entities.InsuranceAny]
	return tolerant
}

func formatPasses(p *entities.TherapistProfile, want entities.Format) bool {
	switch want {
	case entities.FormatOnline:
		return p.Online
	case entities.FormatInPerson:
		return p.HasPhysicalLocation()
	default:
		return true
	}
}

func insuranceSet(values []string) map[entities.InsuranceType]struct{} {
	set := make(map[entities.InsuranceType]struct{}, len(values))
	for _, v := range values {
		if t, ok := ParseInsuranceType(v); ok {
			set[t] = struct{}{}
		}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
