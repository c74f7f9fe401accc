package entities

// InsuranceType is the client's insurance situation
type InsuranceType string

const (
	InsurancePublic  InsuranceType = "PUBLIC"
	InsurancePrivate InsuranceType = "PRIVATE"
	InsuranceSelfPay InsuranceType = "SELF_PAY"
	InsuranceAny     InsuranceType = "ANY"
)

// Format is the session format the client wants
type Format string

const (
	FormatOnline   Format = "ONLINE"
	FormatInPerson Format = "IN_PERSON"
	FormatBoth     Format = "BOTH"
)

// GenderPreference is the preferred therapist gender
type GenderPreference string

const (
	GenderMale   GenderPreference = "male"
	GenderFemale GenderPreference = "female"
	GenderAny    GenderPreference = "any"
)

// AgeRange is the preferred therapist seniority band
type AgeRange string

const (
	AgeRangeYoung  AgeRange = "young"
	AgeRangeMiddle AgeRange = "middle"
	AgeRangeSenior AgeRange = "senior"
	AgeRangeAny    AgeRange = "any"
)

// CommunicationStyle is the preferred conversational style
type CommunicationStyle string

const (
	CommunicationDirect CommunicationStyle = "DIRECT"
	CommunicationGentle CommunicationStyle = "GENTLE"
	CommunicationAny    CommunicationStyle = "ANY"
)

// GeoConstraint restricts candidates by location.
// Coordinates take precedence over PostalCode/City.
type GeoConstraint struct {
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	MaxDistanceKm *float64 `json:"max_distance_km,omitempty"`
	PostalCode    string   `json:"postal_code,omitempty"`
	City          string   `json:"city,omitempty"`
}

// HasCoordinates reports whether both coordinates are present
func (g *GeoConstraint) HasCoordinates() bool {
	return g != nil && g.Latitude != nil && g.Longitude != nil
}

// SoftPreferences influence ranking but never exclude a candidate
type SoftPreferences struct {
	Methods            []string           `json:"methods,omitempty"`
	Gender             GenderPreference   `json:"gender"`
	AgeRange           AgeRange           `json:"age_range"`
	CommunicationStyle CommunicationStyle `json:"communication_style"`
	PriceMax           *int               `json:"price_max,omitempty"`
}

// MatchRequest is a validated, fully defaulted match query.
// It must not be mutated after normalization.
type MatchRequest struct {
	ProblemAreas []string        `json:"problem_areas"`
	Languages    []string        `json:"languages"`
	Insurance    InsuranceType   `json:"insurance"`
	Format       Format          `json:"format"`
	Location     *GeoConstraint  `json:"location,omitempty"`
	MaxWaitWeeks *int            `json:"max_wait_weeks,omitempty"`
	Preferences  SoftPreferences `json:"preferences"`
	Limit        int             `json:"limit"`
}

// ScoredCandidate is a request-scoped scoring result for one eligible profile
type ScoredCandidate struct {
	Profile         *TherapistProfile
	HardScore       float64
	SoftScore       float64
	TotalScore      float64
	MatchedCriteria []string
	DistanceKm      *float64
}

// MatchResult is one entry of the ranked response
type MatchResult struct {
	ProfileID       string   `json:"profile_id"`
	Slug            string   `json:"slug,omitempty"`
	DisplayName     string   `json:"display_name,omitempty"`
	TotalScore      float64  `json:"total_score"`
	HardScore       float64  `json:"hard_score"`
	SoftScore       float64  `json:"soft_score"`
	MatchedCriteria []string `json:"matched_criteria"`
	Highlights      []string `json:"highlights"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
}

// FilterDimension names a selectable filter in the search UI
type FilterDimension string

const (
	DimensionLanguage    FilterDimension = "language"
	DimensionInsurance   FilterDimension = "insurance"
	DimensionFormat      FilterDimension = "format"
	DimensionProblemArea FilterDimension = "problemArea"
)

// FilterOption is one selectable value with its would-be result count
type FilterOption struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	Count     int    `json:"count"`
	Available bool   `json:"available"`
}

// FilterOptions maps each dimension to its ordered options
type FilterOptions map[FilterDimension][]FilterOption
