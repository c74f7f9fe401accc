package matching

import (
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

var (
	vienna    = Point{Latitude: 48.2082, Longitude: 16.3738}
	innsbruck = Point{Latitude: 47.2692, Longitude: 11.4041}
	graz      = Point{Latitude: 47.0707, Longitude: 15.4395}
)

func ptrInt(v int) *int               { return &v }
func ptrFloat(v float64) *float64     { return &v }
func ptrString(v string) *string      { return &v }
func at(p Point) (*float64, *float64) { return ptrFloat(p.Latitude), ptrFloat(p.Longitude) }

// listed returns a verified public profile that can be adjusted by mods
func listed(id string, mods ...func(*entities.TherapistProfile)) *entities.TherapistProfile {
	p := &entities.TherapistProfile{
		ID:          id,
		Slug:        id,
		DisplayName: "Therapeut " + id,
		Specialties: []string{"Angst"},
		Languages:   []string{"Deutsch"},
		Status:      entities.ProfileStatusVerified,
		IsPublic:    true,
	}
	for _, m := range mods {
		m(p)
	}
	return p
}

func baseRequest(problemAreas ...string) *entities.MatchRequest {
	return &entities.MatchRequest{
		ProblemAreas: problemAreas,
		Languages:    []string{DefaultLanguage},
		Insurance:    entities.InsuranceAny,
		Format:       entities.FormatBoth,
		Preferences: entities.SoftPreferences{
			Gender:             entities.GenderAny,
			AgeRange:           entities.AgeRangeAny,
			CommunicationStyle: entities.CommunicationAny,
		},
		Limit: DefaultLimit,
	}
}

// population is a small directory mixing every hard attribute
func population() []*entities.TherapistProfile {
	return []*entities.TherapistProfile{
		listed("t1", func(p *entities.TherapistProfile) {
			p.Specialties = []string{"Angst", "Depression"}
			p.Modalities = []string{"Verhaltenstherapie", "Achtsamkeit"}
			p.Languages = []string{"Deutsch", "Englisch"}
			p.AcceptedInsurance = []string{"PUBLIC", "SELF_PAY"}
			p.Online = true
			p.City = "Wien"
			p.Latitude, p.Longitude = at(vienna)
			p.EstimatedWaitWeeks = ptrInt(2)
			p.Gender = ptrString("female")
			p.YearsExperience = ptrInt(12)
			p.CommunicationStyle = ptrString("DIRECT")
			p.PriceMin = ptrInt(8000)
			p.PriceMax = ptrInt(10000)
		}),
		listed("t2", func(p *entities.TherapistProfile) {
			p.AcceptedInsurance = []string{"privat", "Selbstzahler"}
			p.City = "Graz"
			p.Latitude, p.Longitude = at(graz)
			p.EstimatedWaitWeeks = ptrInt(6)
		}),
		listed("t3", func(p *entities.TherapistProfile) {
			p.Specialties = []string{"Trauma"}
			p.Languages = []string{"Englisch"}
			p.AcceptedInsurance = []string{"SELF_PAY"}
			p.Online = true
		}),
		listed("t4", func(p *entities.TherapistProfile) {
			p.Status = entities.ProfileStatusPending
			p.Online = true
		}),
		listed("t5", func(p *entities.TherapistProfile) {
			p.Specialties = []string{"Burnout", "Angst"}
			p.Languages = []string{"Türkisch", "Deutsch"}
			p.AcceptedInsurance = []string{"gesetzlich"}
			p.Online = true
			p.City = "Innsbruck"
			p.Latitude, p.Longitude = at(innsbruck)
			p.EstimatedWaitWeeks = ptrInt(10)
		}),
		listed("t6", func(p *entities.TherapistProfile) {
			p.IsPublic = false
			p.Online = true
		}),
	}
}

func resultIDs(results []entities.MatchResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ProfileID)
	}
	return ids
}

func eligibleIDs(eligible []Eligible) []string {
	ids := make([]string, 0, len(eligible))
	for _, e := range eligible {
		ids = append(ids, e.Profile.ID)
	}
	return ids
}
