package fuzzy

import (
	"slices"
	"strings"

	"github.com/dshills/airsearch-mcp/pkg/types"
)

// Search defaults
const (
	DefaultLimit        = 20
	DefaultMinScore     = 10.0
	DefaultSuggestLimit = 10

	// MinQueryLength is the shortest trimmed query that produces results
	MinQueryLength = 2
)

// Options controls a single Search call. Nil fields select the defaults;
// set values are honoured as given, so a MinScore of 0 keeps every airport
// and a Limit of 0 returns nothing.
type Options struct {
	Limit          *int     // Maximum results (default DefaultLimit)
	MinScore       *float64 // Inclusive lower bound on the score (default DefaultMinScore)
	IncludeDetails bool
}

func (o Options) limit() int {
	if o.Limit == nil {
		return DefaultLimit
	}
	return max(*o.Limit, 0)
}

func (o Options) minScore() float64 {
	if o.MinScore == nil {
		return DefaultMinScore
	}
	return *o.MinScore
}

// Index ranks a collection of airports against a query
type Index struct {
	scorer *Scorer
}

// NewIndex creates an index backed by the given scorer.
// A nil scorer uses NewScorer().
func NewIndex(scorer *Scorer) *Index {
	if scorer == nil {
		scorer = NewScorer()
	}
	return &Index{scorer: scorer}
}

// Scorer returns the scorer used by the index
func (idx *Index) Scorer() *Scorer {
	return idx.scorer
}

// Search scores every airport, drops those below MinScore, and returns the
// best Limit results in descending score order. Ties keep input order.
func (idx *Index) Search(airports []*types.Airport, query string, opts Options) []types.ScoreResult {
	query = strings.TrimSpace(query)
	if runeLen(query) < MinQueryLength {
		return []types.ScoreResult{}
	}
	limit, minScore := opts.limit(), opts.minScore()
	if limit == 0 {
		return []types.ScoreResult{}
	}

	results := make([]types.ScoreResult, 0)
	for _, a := range airports {
		if a == nil {
			continue
		}
		res := idx.scorer.Score(a, query)
		if res.Score < minScore {
			continue
		}
		if !opts.IncludeDetails {
			res.Details = nil
		}
		results = append(results, res)
	}

	slices.SortStableFunc(results, func(x, y types.ScoreResult) int {
		switch {
		case x.Score > y.Score:
			return -1
		case x.Score < y.Score:
			return 1
		default:
			return 0
		}
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Suggest returns up to limit distinct ICAO and IATA codes starting with the
// query, in airport order with the ICAO code considered before the IATA code.
func (idx *Index) Suggest(airports []*types.Airport, query string, limit int) []string {
	query = strings.TrimSpace(query)
	if runeLen(query) < MinQueryLength {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	prefix := strings.ToUpper(query)
	seen := make(map[string]struct{})
	out := make([]string, 0, limit)

	add := func(code string, ok bool) bool {
		if !ok || !strings.HasPrefix(strings.ToUpper(code), prefix) {
			return false
		}
		if _, dup := seen[code]; dup {
			return false
		}
		seen[code] = struct{}{}
		out = append(out, code)
		return len(out) >= limit
	}

	for _, a := range airports {
		if a == nil {
			continue
		}
		if add(a.ICAO()) || add(a.IATA()) {
			break
		}
	}
	return out
}
