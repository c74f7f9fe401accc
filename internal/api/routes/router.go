package routes

import (
	"net/http"

	"github.com/zatekoja/therapist-discovery/backend/internal/api/handlers"
	"github.com/zatekoja/therapist-discovery/backend/internal/api/middleware"
	"github.com/zatekoja/therapist-discovery/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	matchingHandler *handlers.MatchingHandler
	healthHandler   *handlers.HealthHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	matchingHandler *handlers.MatchingHandler,
	healthHandler *handlers.HealthHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		matchingHandler: matchingHandler,
		healthHandler:   healthHandler,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	r.mux.HandleFunc("POST /api/match", r.matchingHandler.Match)
	r.mux.HandleFunc("POST /api/match/filter-options", r.matchingHandler.FilterOptions)
	r.mux.HandleFunc("GET /api/problem-areas", r.matchingHandler.ProblemAreas)

	// Last wrap runs first: CORS, response optimization, tracing, access log.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
