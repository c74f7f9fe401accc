package matching

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/therapist-discovery/backend/pkg/errors"
)

const (
	// DefaultLanguage is assumed when the client names no language
	DefaultLanguage = "Deutsch"
	DefaultLimit    = 10
	MaxLimit        = 50
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names so field paths match what the client sent.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		if err := registerEnums(validate, enumParsers); err != nil {
			panic(fmt.Sprintf("matching: register validators: %v", err))
		}
	})
	return validate
}

var enumParsers = map[string]func(string) bool{
	"enum_insurance":     func(s string) bool { _, ok := ParseInsuranceType(s); return ok },
	"enum_format":        func(s string) bool { _, ok := ParseFormat(s); return ok },
	"enum_gender":        func(s string) bool { _, ok := ParseGender(s); return ok },
	"enum_age_range":     func(s string) bool { _, ok := ParseAgeRange(s); return ok },
	"enum_communication": func(s string) bool { _, ok := ParseCommunicationStyle(s); return ok },
}

func registerEnums(v *validator.Validate, parsers map[string]func(string) bool) error {
	for tag, parse := range parsers {
		parse := parse
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return parse(fl.Field().String())
		})
		if err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
	}
	return nil
}

var enumValues = map[string]string{
	"enum_insurance":     "PUBLIC, PRIVATE, SELF_PAY, ANY",
	"enum_format":        "ONLINE, IN_PERSON, BOTH",
	"enum_gender":        "male, female, any",
	"enum_age_range":     "young, middle, senior, any",
	"enum_communication": "DIRECT, GENTLE, ANY",
}

// Normalize validates a full match query and applies defaults.
// Failures are returned as a VALIDATION AppError with per-field messages.
func Normalize(c *entities.MatchCriteria) (*entities.MatchRequest, error) {
	return normalize(c, true)
}

// NormalizePartial is Normalize for filter-option queries, where problem
// areas may still be empty
func NormalizePartial(c *entities.MatchCriteria) (*entities.MatchRequest, error) {
	return normalize(c, false)
}

func normalize(c *entities.MatchCriteria, requireProblemAreas bool) (*entities.MatchRequest, error) {
	if c == nil {
		c = &entities.MatchCriteria{}
	}

	fields := map[string]string{}
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, apperrors.NewInternalError("request validation failed", err)
		}
		for _, fe := range verrs {
			path := fieldPath(fe)
			if _, exists := fields[path]; !exists {
				fields[path] = translateError(fe, path)
			}
		}
	}

	problemAreas := dedupe(c.ProblemAreas)
	if requireProblemAreas && len(problemAreas) == 0 {
		if _, exists := fields["problemAreas"]; !exists {
			fields["problemAreas"] = "problemAreas must contain at least one problem area"
		}
	}

	if loc := c.Location; loc != nil {
		if (loc.Latitude == nil) != (loc.Longitude == nil) {
			fields["location"] = "latitude and longitude must be given together"
		}
		if loc.MaxDistanceKm != nil && loc.Latitude == nil && strings.TrimSpace(loc.PostalCode) == "" && strings.TrimSpace(loc.City) == "" {
			fields["location.maxDistanceKm"] = "maxDistanceKm requires coordinates, postalCode or city"
		}
	}

	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid match request", fields)
	}

	req := &entities.MatchRequest{
		ProblemAreas: problemAreas,
		Languages:    dedupe(c.Languages),
		Insurance:    entities.InsuranceAny,
		Format:       entities.FormatBoth,
		MaxWaitWeeks: copyInt(c.MaxWaitWeeks),
		Preferences: entities.SoftPreferences{
			Gender:             entities.GenderAny,
			AgeRange:           entities.AgeRangeAny,
			CommunicationStyle: entities.CommunicationAny,
		},
		Limit: DefaultLimit,
	}
	if len(req.Languages) == 0 {
		req.Languages = []string{DefaultLanguage}
	}
	if c.Insurance != "" {
		req.Insurance, _ = ParseInsuranceType(c.Insurance)
	}
	if c.Format != "" {
		req.Format, _ = ParseFormat(c.Format)
	}
	if c.Limit != nil {
		req.Limit = *c.Limit
	}

	if loc := c.Location; loc != nil {
		g := &entities.GeoConstraint{
			Latitude:      copyFloat(loc.Latitude),
			Longitude:     copyFloat(loc.Longitude),
			MaxDistanceKm: copyFloat(loc.MaxDistanceKm),
			PostalCode:    strings.TrimSpace(loc.PostalCode),
			City:          strings.TrimSpace(loc.City),
		}
		if g.HasCoordinates() || g.PostalCode != "" || g.City != "" {
			req.Location = g
		}
	}

	if p := c.Preferences; p != nil {
		req.Preferences.Methods = dedupe(p.Methods)
		req.Preferences.PriceMax = copyInt(p.PriceMax)
		if p.Gender != "" {
			req.Preferences.Gender, _ = ParseGender(p.Gender)
		}
		if p.AgeRange != "" {
			req.Preferences.AgeRange, _ = ParseAgeRange(p.AgeRange)
		}
		if p.CommunicationStyle != "" {
			req.Preferences.CommunicationStyle, _ = ParseCommunicationStyle(p.CommunicationStyle)
		}
	}

	return req, nil
}

// fieldPath strips the root struct name from the validator namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func translateError(fe validator.FieldError, path string) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "latitude":
		return fmt.Sprintf("%s must be a valid latitude (-90 to 90)", path)
	case "longitude":
		return fmt.Sprintf("%s must be a valid longitude (-180 to 180)", path)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", path, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", path, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", path, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", path, param)
		}
		return fmt.Sprintf("%s must contain at most %s entries", path, param)
	}
	if values, ok := enumValues[fe.Tag()]; ok {
		return fmt.Sprintf("%s must be one of: %s", path, values)
	}
	return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
