package matching

import (
	"strings"

	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

// normalizeKey folds a tag for comparison: trimmed, lower-cased, single-spaced
func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func keySet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if k := normalizeKey(v); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// dedupe trims values and drops blanks and case-insensitive duplicates, keeping first occurrence
func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		k := normalizeKey(trimmed)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// ParseInsuranceType accepts canonical values and the labels profiles are entered with
func ParseInsuranceType(s string) (entities.InsuranceType, bool) {
	switch normalizeKey(s) {
	case "public", "gesetzlich", "kasse", "krankenkasse", "oegk", "gkv":
		return entities.InsurancePublic, true
	case "private", "privat", "pkv", "wahltherapeut":
		return entities.InsurancePrivate, true
	case "self_pay", "self-pay", "self pay", "selbstzahler", "selbstzahlung":
		return entities.InsuranceSelfPay, true
	case "any", "alle":
		return entities.InsuranceAny, true
	}
	return "", false
}

// ParseFormat parses a session format
func ParseFormat(s string) (entities.Format, bool) {
	switch normalizeKey(s) {
	case "online":
		return entities.FormatOnline, true
	case "in_person", "in-person", "in person", "vor ort", "praxis":
		return entities.FormatInPerson, true
	case "both", "beides":
		return entities.FormatBoth, true
	}
	return "", false
}

// ParseGender parses a gender preference or a profile gender value
func ParseGender(s string) (entities.GenderPreference, bool) {
	switch normalizeKey(s) {
	case "male", "m", "männlich", "mann":
		return entities.GenderMale, true
	case "female", "f", "w", "weiblich", "frau":
		return entities.GenderFemale, true
	case "any", "egal":
		return entities.GenderAny, true
	}
	return "", false
}

// ParseAgeRange parses a therapist age range preference
func ParseAgeRange(s string) (entities.AgeRange, bool) {
	switch normalizeKey(s) {
	case "young":
		return entities.AgeRangeYoung, true
	case "middle":
		return entities.AgeRangeMiddle, true
	case "senior":
		return entities.AgeRangeSenior, true
	case "any":
		return entities.AgeRangeAny, true
	}
	return "", false
}

// ParseCommunicationStyle parses a communication style preference or profile value
func ParseCommunicationStyle(s string) (entities.CommunicationStyle, bool) {
	switch normalizeKey(s) {
	case "direct", "direkt":
		return entities.CommunicationDirect, true
	case "gentle", "sanft", "einfühlsam":
		return entities.CommunicationGentle, true
	case "any":
		return entities.CommunicationAny, true
	}
	return "", false
}

// ageRangeFor derives a seniority band from years of practice
func ageRangeFor(yearsExperience int) entities.AgeRange {
	switch {
	case yearsExperience < 10:
		return entities.AgeRangeYoung
	case yearsExperience < 25:
		return entities.AgeRangeMiddle
	default:
		return entities.AgeRangeSenior
	}
}
