package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/therapist-discovery/backend/pkg/errors"
)

// statusClientClosedRequest is the nginx convention for requests abandoned by the client
const statusClientClosedRequest = 499

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, code apperrors.ErrorType, message string) {
	respondWithJSON(w, statusCode, ErrorResponse{Error: message, Code: string(code)})
}

// respondWithAppError maps an error onto its HTTP status and body
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the reply.
		w.WriteHeader(statusClientClosedRequest)
		return
	case errors.Is(err, context.DeadlineExceeded):
		respondWithError(w, http.StatusGatewayTimeout, apperrors.ErrorTypeUpstreamUnavailable, "request timed out")
		return
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, apperrors.ErrorTypeInternal, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Code:   string(appErr.Type),
			Fields: appErr.Fields,
		})
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Type, appErr.Message)
	case apperrors.ErrorTypeUpstreamUnavailable:
		respondWithError(w, http.StatusServiceUnavailable, appErr.Type, "therapist directory unavailable")
	case apperrors.ErrorTypeExternal:
		respondWithError(w, http.StatusBadGateway, appErr.Type, appErr.Message)
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("internal error")
		respondWithError(w, http.StatusInternalServerError, apperrors.ErrorTypeInternal, "internal server error")
	}
}
