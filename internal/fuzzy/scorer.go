package fuzzy

import (
	"github.com/dshills/airsearch-mcp/pkg/types"
)

// Weights holds the points awarded by each scoring rule
type Weights struct {
	ICAOExact  float64
	ICAOPrefix float64
	ICAOFuzzy  float64 // Multiplied by the Jaro-Winkler similarity

	IATAExact  float64
	IATAPrefix float64
	IATAFuzzy  float64

	NameExact   float64
	NamePartial float64

	CityExact   float64
	CityPartial float64

	KeywordsMatch      float64
	PhoneticCodeBonus  float64
	TranspositionBonus float64
	CityPhoneticBonus  float64
}

// DefaultWeights returns the standard weight table
func DefaultWeights() Weights {
	return Weights{
		ICAOExact:          100,
		ICAOPrefix:         80,
		ICAOFuzzy:          60,
		IATAExact:          90,
		IATAPrefix:         70,
		IATAFuzzy:          50,
		NameExact:          70,
		NamePartial:        40,
		CityExact:          60,
		CityPartial:        30,
		KeywordsMatch:      35,
		PhoneticCodeBonus:  20,
		TranspositionBonus: 40,
		CityPhoneticBonus:  25,
	}
}

// Scorer scores airports against free-text queries.
// A Scorer is immutable after construction and safe for concurrent use.
type Scorer struct {
	weights Weights
	rules   []rule
}

// Option configures a Scorer
type Option func(*Scorer)

// WithWeights replaces the default weight table
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// NewScorer creates a scorer with the default weight table and rules
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights: DefaultWeights(),
		rules:   defaultRules(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the weight table in use
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score evaluates every rule against the airport and returns the total with
// its per-rule breakdown. Absent attributes contribute nothing.
func (s *Scorer) Score(a *types.Airport, raw string) types.ScoreResult {
	q := newQuery(raw)

	details := &types.MatchDetails{}
	total := 0.0
	for _, r := range s.rules {
		for _, reason := range r(&s.weights, a, q) {
			details.Reasons = append(details.Reasons, reason)
			total += reason.Points
		}
	}

	total = max(total, 0)
	details.TotalScore = total

	return types.ScoreResult{
		Airport: a,
		Score:   total,
		Details: details,
	}
}
