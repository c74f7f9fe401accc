package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/therapist-discovery/backend/internal/api/handlers"
	"github.com/zatekoja/therapist-discovery/backend/internal/application/services"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/repositories"
	"github.com/zatekoja/therapist-discovery/backend/internal/matching"
)

func newMatchingHandler(repo *repositories.StaticTherapistRepository) *handlers.MatchingHandler {
	engine := matching.NewEngine(matching.WithTaxonomy(matching.DefaultTaxonomy()))
	return handlers.NewMatchingHandler(services.NewMatchingService(repo, engine))
}

func population() *repositories.StaticTherapistRepository {
	lat, lon := 48.2082, 16.3738
	return repositories.NewStaticTherapistRepository([]*entities.TherapistProfile{
		{
			ID: "t1", DisplayName: "Anna", Specialties: []string{"Depression"}, Languages: []string{"Deutsch"},
			AcceptedInsurance: []string{"PUBLIC"}, Online: true, City: "Wien", Latitude: &lat, Longitude: &lon,
			Status: entities.ProfileStatusVerified, IsPublic: true,
		},
		{
			ID: "t2", DisplayName: "Ben", Specialties: []string{"Trauma"}, Languages: []string{"Deutsch"},
			Online: true, Status: entities.ProfileStatusVerified, IsPublic: true,
		},
	})
}

func post(h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestMatchingHandler_Match(t *testing.T) {
	h := newMatchingHandler(population())

	w := post(h.Match, "/api/match", `{"problemAreas":["depression"],"languages":["Deutsch"]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp services.MatchResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "t1", resp.Results[0].ProfileID)
	assert.NotEmpty(t, resp.Results[0].MatchedCriteria)
}

func TestMatchingHandler_ValidationErrors(t *testing.T) {
	h := newMatchingHandler(population())

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing problem areas", `{}`, "problemAreas"},
		{"bad insurance", `{"problemAreas":["depression"],"insuranceType":"GOLD"}`, "insuranceType"},
		{"half coordinates", `{"problemAreas":["depression"],"location":{"latitude":48.2}}`, "location"},
		{"malformed json", `{"problemAreas":`, "body"},
		{"unknown field", `{"problemAreas":["depression"],"mood":"sad"}`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(h.Match, "/api/match", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, "VALIDATION", resp.Code)
			assert.Contains(t, resp.Fields, tt.field)
		})
	}
}

func TestMatchingHandler_UpstreamUnavailable(t *testing.T) {
	repo := population()
	repo.Err = errors.New("connection refused")
	h := newMatchingHandler(repo)

	w := post(h.Match, "/api/match", `{"problemAreas":["depression"]}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"therapist directory unavailable","code":"UPSTREAM_UNAVAILABLE"}`, w.Body.String())
}

func TestMatchingHandler_FilterOptions(t *testing.T) {
	h := newMatchingHandler(population())

	t.Run("empty body counts the whole population", func(t *testing.T) {
		w := post(h.FilterOptions, "/api/match/filter-options", ``)
		require.Equal(t, http.StatusOK, w.Code)

		var resp services.FilterOptionsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 2, resp.Eligible)
		assert.Contains(t, resp.Options, entities.DimensionProblemArea)
		assert.Contains(t, resp.Options, entities.DimensionLanguage)
	})

	t.Run("partial criteria", func(t *testing.T) {
		w := post(h.FilterOptions, "/api/match/filter-options", `{"problemAreas":["depression"]}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp services.FilterOptionsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 1, resp.Eligible)
	})
}

func TestMatchingHandler_ProblemAreas(t *testing.T) {
	h := newMatchingHandler(population())
	w := httptest.NewRecorder()
	h.ProblemAreas(w, httptest.NewRequest(http.MethodGet, "/api/problem-areas", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		ProblemAreas []entities.ProblemArea `json:"problem_areas"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, len(matching.DefaultTaxonomy().Catalog()), len(resp.ProblemAreas))
}

type cancelledService struct{}

func (cancelledService) Match(ctx context.Context, c *entities.MatchCriteria) (*services.MatchResponse, error) {
	return nil, context.Canceled
}

func (cancelledService) FilterOptions(ctx context.Context, c *entities.MatchCriteria) (*services.FilterOptionsResponse, error) {
	return nil, context.DeadlineExceeded
}

func (cancelledService) ProblemAreas() []entities.ProblemArea { return nil }

func TestMatchingHandler_ContextErrors(t *testing.T) {
	h := handlers.NewMatchingHandler(cancelledService{})

	assert.Equal(t, 499, post(h.Match, "/api/match", `{}`).Code)
	assert.Equal(t, http.StatusGatewayTimeout, post(h.FilterOptions, "/api/match/filter-options", `{}`).Code)
}

func TestHealthHandler(t *testing.T) {
	ok := handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"redis": func(ctx context.Context) error { return nil },
	})
	w := httptest.NewRecorder()
	ok.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","dependencies":{"redis":"ok"}}`, w.Body.String())

	failing := handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"postgres": func(ctx context.Context) error { return errors.New("down") },
	})
	w = httptest.NewRecorder()
	failing.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","dependencies":{"postgres":"down"}}`, w.Body.String())
}
