package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/therapist-discovery/backend/pkg/errors"
	"github.com/zatekoja/therapist-discovery/backend/pkg/geo"
)

const therapistTable = "therapist_profiles"

var therapistColumns = []interface{}{
	"id", "slug", "display_name",
	"specialties", "modalities", "languages", "accepted_insurance",
	"online", "city", "postal_code", "latitude", "longitude",
	"price_min", "price_max", "estimated_wait_weeks",
	"gender", "years_experience", "communication_style",
	"status", "is_public", "updated_at",
}

// TherapistAdapter reads therapist profiles from PostgreSQL
type TherapistAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTherapistAdapter creates a new therapist adapter
func NewTherapistAdapter(client *postgres.Client) *TherapistAdapter {
	return &TherapistAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// FindCandidates loads listed profiles, narrowed by format and a bounding box
func (a *TherapistAdapter) FindCandidates(ctx context.Context, query repositories.CandidateQuery) ([]*entities.TherapistProfile, error) {
	ds := a.db.From(therapistTable).
		Select(therapistColumns...).
		Where(goqu.Ex{
			"status":    string(entities.ProfileStatusVerified),
			"is_public": true,
		})

	if query.OnlineOnly {
		ds = ds.Where(goqu.Ex{"online": true})
	}
	if near := query.Near; near != nil {
		minLat, maxLat, minLon, maxLon := boundingBox(near.Latitude, near.Longitude, near.RadiusKm)
		ds = ds.Where(
			goqu.C("latitude").Between(goqu.Range(minLat, maxLat)),
			goqu.C("longitude").Between(goqu.Range(minLon, maxLon)),
		)
	}

	ds = ds.Order(goqu.I("id").Asc())
	if query.Limit > 0 {
		ds = ds.Limit(uint(query.Limit))
	}

	sqlQuery, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build candidate query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query therapist profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*entities.TherapistProfile, 0)
	for rows.Next() {
		p, err := scanTherapist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan therapist profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate therapist profiles: %w", err)
	}

	return profiles, nil
}

// GetByID retrieves a profile regardless of its listing state
func (a *TherapistAdapter) GetByID(ctx context.Context, id string) (*entities.TherapistProfile, error) {
	sqlQuery, args, err := a.db.From(therapistTable).
		Select(therapistColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	p, err := scanTherapist(a.client.DB().QueryRowContext(ctx, sqlQuery, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("therapist with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get therapist profile: %w", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTherapist(row rowScanner) (*entities.TherapistProfile, error) {
	p := &entities.TherapistProfile{}
	var (
		city, postalCode, gender, style sql.NullString
		lat, lon                        sql.NullFloat64
		priceMin, priceMax, wait, years sql.NullInt64
		status                          string
	)

	err := row.Scan(
		&p.ID,
		&p.Slug,
		&p.DisplayName,
		pq.Array(&p.Specialties),
		pq.Array(&p.Modalities),
		pq.Array(&p.Languages),
		pq.Array(&p.AcceptedInsurance),
		&p.Online,
		&city,
		&postalCode,
		&lat,
		&lon,
		&priceMin,
		&priceMax,
		&wait,
		&gender,
		&years,
		&style,
		&status,
		&p.IsPublic,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.City = city.String
	p.PostalCode = postalCode.String
	p.Latitude = nullFloat(lat)
	p.Longitude = nullFloat(lon)
	p.PriceMin = nullInt(priceMin)
	p.PriceMax = nullInt(priceMax)
	p.EstimatedWaitWeeks = nullInt(wait)
	p.YearsExperience = nullInt(years)
	p.Gender = nullString(gender)
	p.CommunicationStyle = nullString(style)
	p.Status = entities.ProfileStatus(status)

	return p, nil
}

// boundingBox returns a lat/lon box containing the circle around a point.
// The longitude range widens to the whole globe near the poles and whenever
// the circle crosses the antimeridian.
func boundingBox(lat, lon, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	angular := radiusKm / geo.EarthRadiusKm
	dLat := angular * 180 / math.Pi
	minLat = math.Max(lat-dLat, -90)
	maxLat = math.Min(lat+dLat, 90)

	if minLat <= -90 || maxLat >= 90 {
		return minLat, maxLat, -180, 180
	}
	ratio := math.Sin(angular) / math.Cos(lat*math.Pi/180)
	if angular >= math.Pi/2 || ratio >= 1 {
		return minLat, maxLat, -180, 180
	}
	dLon := math.Asin(ratio) * 180 / math.Pi
	if lon-dLon < -180 || lon+dLon > 180 {
		return minLat, maxLat, -180, 180
	}
	return minLat, maxLat, lon - dLon, lon + dLon
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullString(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := v.String
	return &s
}
