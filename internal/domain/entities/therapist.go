package entities

import "time"

// ProfileStatus is the verification state maintained by profile management
type ProfileStatus string

const (
	ProfileStatusPending  ProfileStatus = "PENDING"
	ProfileStatusVerified ProfileStatus = "VERIFIED"
	ProfileStatusRejected ProfileStatus = "REJECTED"
)

// TherapistProfile is a read-only snapshot of a therapist's directory profile.
// Prices are in cents.
type TherapistProfile struct {
	ID                 string        `json:"id" db:"id"`
	Slug               string        `json:"slug" db:"slug"`
	DisplayName        string        `json:"display_name" db:"display_name"`
	Specialties        []string      `json:"specialties" db:"specialties"`
	Modalities         []string      `json:"modalities" db:"modalities"`
	Languages          []string      `json:"languages" db:"languages"`
	AcceptedInsurance  []string      `json:"accepted_insurance" db:"accepted_insurance"`
	Online             bool          `json:"online" db:"online"`
	City               string        `json:"city,omitempty" db:"city"`
	PostalCode         string        `json:"postal_code,omitempty" db:"postal_code"`
	Latitude           *float64      `json:"latitude,omitempty" db:"latitude"`
	Longitude          *float64      `json:"longitude,omitempty" db:"longitude"`
	PriceMin           *int          `json:"price_min,omitempty" db:"price_min"`
	PriceMax           *int          `json:"price_max,omitempty" db:"price_max"`
	EstimatedWaitWeeks *int          `json:"estimated_wait_weeks,omitempty" db:"estimated_wait_weeks"`
	Gender             *string       `json:"gender,omitempty" db:"gender"`
	YearsExperience    *int          `json:"years_experience,omitempty" db:"years_experience"`
	CommunicationStyle *string       `json:"communication_style,omitempty" db:"communication_style"`
	Status             ProfileStatus `json:"status" db:"status"`
	IsPublic           bool          `json:"is_public" db:"is_public"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// HasCoordinates reports whether the profile carries a geocoded practice location
func (p *TherapistProfile) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// HasPhysicalLocation reports whether the therapist can see clients in person
func (p *TherapistProfile) HasPhysicalLocation() bool {
	return p.City != "" || p.HasCoordinates()
}

// IsListed reports whether the profile may appear in the public directory
func (p *TherapistProfile) IsListed() bool {
	return p.Status == ProfileStatusVerified && p.IsPublic
}

// WaitWeeks returns the estimated wait, treating an unset value as no wait
func (p *TherapistProfile) WaitWeeks() int {
	if p.EstimatedWaitWeeks == nil {
		return 0
	}
	return *p.EstimatedWaitWeeks
}

// ProblemArea is a client-facing presenting concern and the specialty tags it maps to
type ProblemArea struct {
	Value       string   `json:"value" db:"value"`
	Label       string   `json:"label" db:"label"`
	Specialties []string `json:"specialties" db:"specialties"`
	SortOrder   int      `json:"sort_order" db:"sort_order"`
}

// ProfileEvent is published by profile management whenever a profile changes
type ProfileEvent struct {
	ID          string           `json:"id"`
	TherapistID string           `json:"therapist_id"`
	EventType   ProfileEventType `json:"event_type"`
	Timestamp   time.Time        `json:"timestamp"`
}

// ProfileEventType represents the kind of profile change
type ProfileEventType string

const (
	ProfileEventUpdated     ProfileEventType = "profile_updated"
	ProfileEventVerified    ProfileEventType = "profile_verified"
	ProfileEventUnpublished ProfileEventType = "profile_unpublished"
)
