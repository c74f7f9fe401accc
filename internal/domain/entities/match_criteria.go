package entities

// MatchCriteria is the raw match query as submitted by the intake flow.
// It is validated and converted into a MatchRequest before use.
type MatchCriteria struct {
	ProblemAreas []string            `json:"problemAreas" validate:"omitempty,max=20,dive,required,max=100"`
	Languages    []string            `json:"languages" validate:"omitempty,max=10,dive,required,max=50"`
	Insurance    string              `json:"insuranceType" validate:"omitempty,enum_insurance"`
	Format       string              `json:"format" validate:"omitempty,enum_format"`
	Location     *LocationCriteria   `json:"location"`
	MaxWaitWeeks *int                `json:"maxWaitWeeks" validate:"omitempty,gte=0,lte=52"`
	Preferences  *PreferenceCriteria `json:"preferences"`
	Limit        *int                `json:"limit" validate:"omitempty,gte=1,lte=50"`
}

// LocationCriteria is the raw geo part of MatchCriteria
type LocationCriteria struct {
	Latitude      *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,longitude"`
	MaxDistanceKm *float64 `json:"maxDistanceKm" validate:"omitempty,gt=0,lte=1000"`
	PostalCode    string   `json:"postalCode" validate:"omitempty,max=10"`
	City          string   `json:"city" validate:"omitempty,max=100"`
}

// PreferenceCriteria is the raw soft-preference part of MatchCriteria
type PreferenceCriteria struct {
	Methods            []string `json:"preferredMethods" validate:"omitempty,max=20,dive,required,max=100"`
	Gender             string   `json:"therapistGender" validate:"omitempty,enum_gender"`
	AgeRange           string   `json:"therapistAgeRange" validate:"omitempty,enum_age_range"`
	CommunicationStyle string   `json:"communicationStyle" validate:"omitempty,enum_communication"`
	PriceMax           *int     `json:"priceMax" validate:"omitempty,gte=0"`
}
