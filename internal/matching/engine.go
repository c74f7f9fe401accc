// Package matching ranks therapist profiles against a client's criteria.
//
// A request flows through Normalize, the eligibility filter, the scorer and
// Rank. The Aggregator reuses the eligibility evaluation to count how many
// therapists each filter value would leave. Nothing in this package performs
// I/O; the candidate population is supplied by the caller.
package matching

import (
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

// Engine wires the matching stages together. It holds no per-request state
// and is safe for concurrent use.
type Engine struct {
	taxonomy   Taxonomy
	resolver   LocationResolver
	scorer     *Scorer
	aggregator *Aggregator
}

// Option configures an Engine
type Option func(*engineOptions)

type engineOptions struct {
	taxonomy  Taxonomy
	resolver  LocationResolver
	weights   Weights
	languages []string
}

// WithTaxonomy sets the problem-area to specialty mapping
func WithTaxonomy(t Taxonomy) Option {
	return func(o *engineOptions) { o.taxonomy = t }
}

// WithLocationResolver sets the resolver used for postal-code or city only requests
func WithLocationResolver(r LocationResolver) Option {
	return func(o *engineOptions) { o.resolver = r }
}

// WithWeights overrides the default weights
func WithWeights(w Weights) Option {
	return func(o *engineOptions) { o.weights = w }
}

// WithLanguageCatalog sets the languages always offered as filter options
func WithLanguageCatalog(languages []string) Option {
	return func(o *engineOptions) { o.languages = languages }
}

// NewEngine creates an engine
func NewEngine(opts ...Option) *Engine {
	o := engineOptions{
		taxonomy:  IdentityTaxonomy{},
		weights:   DefaultWeights(),
		languages: DefaultLanguageCatalog,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.taxonomy == nil {
		o.taxonomy = IdentityTaxonomy{}
	}

	return &Engine{
		taxonomy:   o.taxonomy,
		resolver:   o.resolver,
		scorer:     NewScorer(o.weights),
		aggregator: NewAggregator(o.taxonomy, o.resolver, o.languages),
	}
}

// Taxonomy returns the configured taxonomy
func (e *Engine) Taxonomy() Taxonomy {
	return e.taxonomy
}

// Eligible returns the profiles passing every hard constraint, in input order
func (e *Engine) Eligible(req *entities.MatchRequest, profiles []*entities.TherapistProfile) []Eligible {
	cr := compile(req, e.taxonomy, e.resolver)
	out := make([]Eligible, 0)
	for _, p := range profiles {
		if p == nil {
			continue
		}
		if ev := cr.evaluate(p); ev.passes(allConstraints) {
			out = append(out, cr.eligible(ev))
		}
	}
	return out
}

// CheckEligible reports whether a single profile passes every hard constraint
func (e *Engine) CheckEligible(req *entities.MatchRequest, profile *entities.TherapistProfile) bool {
	if profile == nil {
		return false
	}
	return compile(req, e.taxonomy, e.resolver).evaluate(profile).passes(allConstraints)
}

// Score returns the scored eligible candidates in input order
func (e *Engine) Score(req *entities.MatchRequest, profiles []*entities.TherapistProfile) []entities.ScoredCandidate {
	return e.scorer.ScoreAll(req, e.Eligible(req, profiles))
}

// Match runs eligibility, scoring and ranking. An empty result is not an error.
func (e *Engine) Match(req *entities.MatchRequest, profiles []*entities.TherapistProfile) []entities.MatchResult {
	return Rank(e.Score(req, profiles), req.Limit)
}

// FilterOptions returns the option counts per dimension and the current eligible count
func (e *Engine) FilterOptions(req *entities.MatchRequest, profiles []*entities.TherapistProfile) (entities.FilterOptions, int) {
	return e.aggregator.Aggregate(req, profiles)
}
