package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

// toDocument maps a profile onto the Typesense therapist document
func toDocument(p *entities.TherapistProfile) map[string]interface{} {
	doc := map[string]interface{}{
		"id":                 p.ID,
		"slug":               p.Slug,
		"display_name":       p.DisplayName,
		"specialties":        uniqueTerms(p.Specialties),
		"languages":          uniqueTerms(p.Languages),
		"accepted_insurance": uniqueTerms(p.AcceptedInsurance),
		"modalities":         uniqueTerms(p.Modalities),
		"online":             p.Online,
		"listed":             p.IsListed(),
		"updated_at":         p.UpdatedAt.Unix(),
	}

	if p.City != "" {
		doc["city"] = p.City
	}
	if p.PostalCode != "" {
		doc["postal_code"] = p.PostalCode
	}
	if p.HasCoordinates() {
		doc["location"] = []float64{*p.Latitude, *p.Longitude}
	}
	setInt(doc, "price_min", p.PriceMin)
	setInt(doc, "price_max", p.PriceMax)
	setInt(doc, "estimated_wait_weeks", p.EstimatedWaitWeeks)
	setInt(doc, "years_experience", p.YearsExperience)
	if p.Gender != nil {
		doc["gender"] = *p.Gender
	}
	if p.CommunicationStyle != nil {
		doc["communication_style"] = *p.CommunicationStyle
	}

	return doc
}

// fromDocument rebuilds a profile from a search hit or retrieved document.
// Only listed profiles are indexed, so listing state maps back to VERIFIED and public.
func fromDocument(doc map[string]interface{}) (*entities.TherapistProfile, error) {
	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("typesense document without id")
	}

	p := &entities.TherapistProfile{
		ID:                 id,
		Slug:               stringField(doc, "slug"),
		DisplayName:        stringField(doc, "display_name"),
		Specialties:        stringsField(doc, "specialties"),
		Languages:          stringsField(doc, "languages"),
		AcceptedInsurance:  stringsField(doc, "accepted_insurance"),
		Modalities:         stringsField(doc, "modalities"),
		City:               stringField(doc, "city"),
		PostalCode:         stringField(doc, "postal_code"),
		PriceMin:           intField(doc, "price_min"),
		PriceMax:           intField(doc, "price_max"),
		EstimatedWaitWeeks: intField(doc, "estimated_wait_weeks"),
		YearsExperience:    intField(doc, "years_experience"),
		Gender:             optionalString(doc, "gender"),
		CommunicationStyle: optionalString(doc, "communication_style"),
		Status:             entities.ProfileStatusPending,
	}

	p.Online, _ = doc["online"].(bool)
	if listed, _ := doc["listed"].(bool); listed {
		p.Status = entities.ProfileStatusVerified
		p.IsPublic = true
	}
	if ts, ok := number(doc["updated_at"]); ok {
		p.UpdatedAt = time.Unix(int64(ts), 0).UTC()
	}
	switch loc := doc["location"].(type) {
	case []float64:
		if len(loc) == 2 {
			lat, lon := loc[0], loc[1]
			p.Latitude, p.Longitude = &lat, &lon
		}
	case []interface{}:
		if len(loc) == 2 {
			lat, latOK := number(loc[0])
			lon, lonOK := number(loc[1])
			if latOK && lonOK {
				p.Latitude, p.Longitude = &lat, &lon
			}
		}
	}

	return p, nil
}

// uniqueTerms trims and de-duplicates terms, keeping first occurrences
func uniqueTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, term)
	}
	return out
}

func setInt(doc map[string]interface{}, field string, v *int) {
	if v != nil {
		doc[field] = *v
	}
}

func stringField(doc map[string]interface{}, field string) string {
	s, _ := doc[field].(string)
	return s
}

func optionalString(doc map[string]interface{}, field string) *string {
	s, ok := doc[field].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func stringsField(doc map[string]interface{}, field string) []string {
	switch v := doc[field].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intField(doc map[string]interface{}, field string) *int {
	f, ok := number(doc[field])
	if !ok {
		return nil
	}
	i := int(f)
	return &i
}

// number accepts the numeric shapes produced by JSON decoding and by toDocument
func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
