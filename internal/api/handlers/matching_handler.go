package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/zatekoja/therapist-discovery/backend/internal/application/services"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/therapist-discovery/backend/pkg/errors"
)

const maxRequestBodyBytes = 1 << 20

// MatchingService is the part of the matching service the HTTP layer uses
type MatchingService interface {
	Match(ctx context.Context, criteria *entities.MatchCriteria) (*services.MatchResponse, error)
	FilterOptions(ctx context.Context, criteria *entities.MatchCriteria) (*services.FilterOptionsResponse, error)
	ProblemAreas() []entities.ProblemArea
}

// MatchingHandler handles match, filter-option and taxonomy requests
type MatchingHandler struct {
	service MatchingService
}

// NewMatchingHandler creates a new matching handler
func NewMatchingHandler(service MatchingService) *MatchingHandler {
	return &MatchingHandler{service: service}
}

// Match handles POST /api/match
func (h *MatchingHandler) Match(w http.ResponseWriter, r *http.Request) {
	criteria, ok := decodeCriteria(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Match(r.Context(), criteria)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// FilterOptions handles POST /api/match/filter-options
func (h *MatchingHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	criteria, ok := decodeCriteria(w, r)
	if !ok {
		return
	}

	resp, err := h.service.FilterOptions(r.Context(), criteria)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// ProblemAreas handles GET /api/problem-areas
func (h *MatchingHandler) ProblemAreas(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"problem_areas": h.service.ProblemAreas(),
	})
}

// decodeCriteria reads the request body; an empty body is an empty query
func decodeCriteria(w http.ResponseWriter, r *http.Request) (*entities.MatchCriteria, bool) {
	var criteria entities.MatchCriteria

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&criteria); err != nil && !errors.Is(err, io.EOF) {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "invalid request body",
			Code:   string(apperrors.ErrorTypeValidation),
			Fields: map[string]string{"body": err.Error()},
		})
		return nil, false
	}
	return &criteria, true
}
