package searcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/airsearch-mcp/internal/cache"
	"github.com/dshills/airsearch-mcp/internal/fuzzy"
	"github.com/dshills/airsearch-mcp/internal/storage"
	"github.com/dshills/airsearch-mcp/pkg/types"
)

// Defaults applied by the search operations
const (
	DefaultLimit          = 20
	DefaultSuggestLimit   = 10
	DefaultCodeLimit      = 10
	DefaultFuzzyMinScore  = 15.0
	EnhancedMinScore      = 20.0
	CodeSearchMinScore    = 30.0
	CitySearchMinScore    = 15.0
	MinCodeQueryLength    = 3
	DefaultLookupCacheTTL = 10 * time.Minute
	DefaultLookupCacheLen = 1024
)

// ErrInvalidCode is returned when a lookup code is neither 3 nor 4 characters
var ErrInvalidCode = errors.New("airport code must be 3 (IATA) or 4 (ICAO) characters")

// FuzzyOptions controls FuzzySearch. Nil fields select the defaults; a set
// MinScore of 0 keeps every airport and a set Limit of 0 returns nothing.
type FuzzyOptions struct {
	Limit          *int     // Default 20
	MinScore       *float64 // Inclusive, default 15
	IncludeDetails bool
}

// CityOptions controls FuzzyCitySearch
type CityOptions struct {
	Limit          int // Default 20
	IncludeDetails bool
}

// Searcher coordinates exact store queries and fuzzy search over the cached snapshot
type Searcher struct {
	store   storage.Storage
	cache   *cache.RecordCache
	index   *fuzzy.Index
	lookups *expirable.LRU[string, *types.Airport]
	logger  *slog.Logger

	lookupSize int
	lookupTTL  time.Duration
}

// Option configures a Searcher
type Option func(*Searcher)

// WithCache sets the snapshot cache. By default one is built over the store.
func WithCache(c *cache.RecordCache) Option {
	return func(s *Searcher) {
		s.cache = c
	}
}

// WithIndex sets the fuzzy index
func WithIndex(idx *fuzzy.Index) Option {
	return func(s *Searcher) {
		s.index = idx
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// WithLookupCache sizes the code lookup cache. Non-positive values keep the defaults.
func WithLookupCache(size int, ttl time.Duration) Option {
	return func(s *Searcher) {
		if size > 0 {
			s.lookupSize = size
		}
		if ttl > 0 {
			s.lookupTTL = ttl
		}
	}
}

// NewSearcher creates a new Searcher instance
func NewSearcher(store storage.Storage, opts ...Option) *Searcher {
	s := &Searcher{
		store:      store,
		logger:     slog.Default(),
		lookupSize: DefaultLookupCacheLen,
		lookupTTL:  DefaultLookupCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cache == nil {
		s.cache = cache.New(store, cache.WithLogger(s.logger))
	}
	if s.index == nil {
		s.index = fuzzy.NewIndex(fuzzy.NewScorer())
	}
	s.lookups = expirable.NewLRU[string, *types.Airport](s.lookupSize, nil, s.lookupTTL)

	return s
}

// shortQuery reports whether the trimmed query is below the minimum length
func shortQuery(query string, minLen int) bool {
	return len([]rune(strings.TrimSpace(query))) < minLen
}

// EnhancedSearch returns store substring matches first, then fuzzy matches
// for the remaining slots. No airport appears twice.
func (s *Searcher) EnhancedSearch(ctx context.Context, query string, limit int) (results []*types.Airport, err error) {
	start := time.Now()
	defer func() { observe(flavorEnhanced, start, len(results), err) }()

	query = strings.TrimSpace(query)
	if shortQuery(query, fuzzy.MinQueryLength) {
		return []*types.Airport{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var exact []*types.Airport
	var snap *cache.Snapshot

	// The store query and the snapshot load are independent
	g, gctx := errgroup.WithContext(ctx)
	if exactLimit := limit / 2; exactLimit > 0 {
		g.Go(func() error {
			found, err := s.store.FindByPattern(gctx, storage.DefaultPatternFields, query, exactLimit)
			if err != nil {
				return fmt.Errorf("exact search failed: %w", err)
			}
			exact = found
			return nil
		})
	}
	g.Go(func() error {
		loaded, err := s.cache.Load(gctx)
		if err != nil {
			return err
		}
		snap = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := make([]*types.Airport, 0, limit)
	seen := make(map[int64]struct{}, limit)
	for _, a := range exact {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		combined = append(combined, a)
	}

	if remaining := limit - len(exact); remaining > 0 {
		minScore := EnhancedMinScore
		fuzzyResults := s.index.Search(snap.Airports, query, fuzzy.Options{
			Limit:    &remaining,
			MinScore: &minScore,
		})
		for _, r := range fuzzyResults {
			if _, dup := seen[r.Airport.ID]; dup {
				continue
			}
			seen[r.Airport.ID] = struct{}{}
			combined = append(combined, r.Airport)
		}
	}

	if len(combined) > limit {
		combined = combined[:limit]
	}
	return combined, nil
}

// FuzzySearch ranks the whole snapshot against the query
func (s *Searcher) FuzzySearch(ctx context.Context, query string, opts FuzzyOptions) (results []types.ScoreResult, err error) {
	start := time.Now()
	defer func() { observe(flavorFuzzy, start, len(results), err) }()

	if shortQuery(query, fuzzy.MinQueryLength) {
		return []types.ScoreResult{}, nil
	}
	limit, minScore := DefaultLimit, DefaultFuzzyMinScore
	if opts.Limit != nil {
		limit = *opts.Limit
	}
	if opts.MinScore != nil {
		minScore = *opts.MinScore
	}

	snap, err := s.cache.Load(ctx)
	if err != nil {
		return nil, err
	}

	return s.index.Search(snap.Airports, query, fuzzy.Options{
		Limit:          &limit,
		MinScore:       &minScore,
		IncludeDetails: opts.IncludeDetails,
	}), nil
}

// Suggest returns ICAO and IATA codes starting with the query, for autocomplete
func (s *Searcher) Suggest(ctx context.Context, query string, limit int) (results []string, err error) {
	start := time.Now()
	defer func() { observe(flavorSuggest, start, len(results), err) }()

	if shortQuery(query, fuzzy.MinQueryLength) {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	snap, err := s.cache.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.index.Suggest(snap.Airports, query, limit), nil
}

// SmartCodeSearch is a typo-tolerant search restricted to airports with an ICAO code
func (s *Searcher) SmartCodeSearch(ctx context.Context, query string, limit int) (results []types.CodeMatch, err error) {
	start := time.Now()
	defer func() { observe(flavorCode, start, len(results), err) }()

	if shortQuery(query, MinCodeQueryLength) {
		return []types.CodeMatch{}, nil
	}
	if limit <= 0 {
		limit = DefaultCodeLimit
	}

	snap, err := s.cache.Load(ctx)
	if err != nil {
		return nil, err
	}

	withCode := make([]*types.Airport, 0, len(snap.Airports))
	for _, a := range snap.Airports {
		if _, ok := a.ICAO(); ok {
			withCode = append(withCode, a)
		}
	}

	minScore := CodeSearchMinScore
	hits := s.index.Search(withCode, strings.ToUpper(query), fuzzy.Options{
		Limit:          &limit,
		MinScore:       &minScore,
		IncludeDetails: true,
	})

	results = make([]types.CodeMatch, 0, len(hits))
	for _, h := range hits {
		results = append(results, toCodeMatch(h))
	}
	return results, nil
}

func toCodeMatch(r types.ScoreResult) types.CodeMatch {
	a := r.Airport
	icao, _ := a.ICAO()
	iata, _ := a.IATA()
	city, _ := a.City()
	country, _ := a.Country()

	return types.CodeMatch{
		ICAOCode:     icao,
		IATACode:     iata,
		Name:         a.Name,
		Municipality: city,
		CountryName:  country,
		Type:         a.Type,
		Score:        r.Score,
		MatchReason:  strings.Join(r.Details.Descriptions(), ", "),
	}
}

// FuzzyCitySearch ranks airports with a municipality against a city name.
// Exact city matches come first, then cities starting with the query, then by score.
func (s *Searcher) FuzzyCitySearch(ctx context.Context, city string, opts CityOptions) (results []types.ScoreResult, err error) {
	start := time.Now()
	defer func() { observe(flavorCity, start, len(results), err) }()

	city = strings.TrimSpace(city)
	if shortQuery(city, fuzzy.MinQueryLength) {
		return []types.ScoreResult{}, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	snap, err := s.cache.Load(ctx)
	if err != nil {
		return nil, err
	}

	withCity := make([]*types.Airport, 0, len(snap.Airports))
	for _, a := range snap.Airports {
		if c, ok := a.City(); ok && strings.TrimSpace(c) != "" {
			withCity = append(withCity, a)
		}
	}

	minScore := CitySearchMinScore
	results = s.index.Search(withCity, city, fuzzy.Options{
		Limit:          &opts.Limit,
		MinScore:       &minScore,
		IncludeDetails: opts.IncludeDetails,
	})

	lower := strings.ToLower(city)
	rank := func(r types.ScoreResult) int {
		c, _ := r.Airport.City()
		c = strings.ToLower(c)
		switch {
		case c == lower:
			return 0
		case strings.HasPrefix(c, lower):
			return 1
		default:
			return 2
		}
	}

	slices.SortStableFunc(results, func(x, y types.ScoreResult) int {
		if rx, ry := rank(x), rank(y); rx != ry {
			return rx - ry
		}
		switch {
		case x.Score > y.Score:
			return -1
		case x.Score < y.Score:
			return 1
		default:
			return 0
		}
	})

	return results, nil
}

// LookupCode resolves a 4-character ICAO or 3-character IATA code.
// Hits are cached; misses return storage.ErrNotFound and are not cached.
func (s *Searcher) LookupCode(ctx context.Context, code string) (*types.Airport, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if a, ok := s.lookups.Get(code); ok {
		lookupsTotal.WithLabelValues("hit").Inc()
		return a, nil
	}

	var (
		a   *types.Airport
		err error
	)
	switch len([]rune(code)) {
	case 4:
		a, err = s.store.GetAirportByICAO(ctx, code)
	case 3:
		a, err = s.store.GetAirportByIATA(ctx, code)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	if err != nil {
		lookupsTotal.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("failed to look up %s: %w", code, err)
	}

	lookupsTotal.WithLabelValues("store").Inc()
	s.lookups.Add(code, a)
	return a, nil
}
