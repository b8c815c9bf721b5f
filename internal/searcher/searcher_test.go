package searcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/airsearch-mcp/internal/cache"
	"github.com/dshills/airsearch-mcp/internal/storage"
	"github.com/dshills/airsearch-mcp/pkg/types"
)

// countingStore wraps a real store, counting calls and optionally failing them
type countingStore struct {
	storage.Storage
	listCalls    atomic.Int32
	patternCalls atomic.Int32
	icaoCalls    atomic.Int32
	listErr      error
	patternErr   error
}

func (c *countingStore) ListAirports(ctx context.Context) ([]*types.Airport, error) {
	c.listCalls.Add(1)
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.Storage.ListAirports(ctx)
}

func (c *countingStore) FindByPattern(ctx context.Context, fields []storage.Field, substring string, limit int) ([]*types.Airport, error) {
	c.patternCalls.Add(1)
	if c.patternErr != nil {
		return nil, c.patternErr
	}
	return c.Storage.FindByPattern(ctx, fields, substring, limit)
}

func (c *countingStore) GetAirportByICAO(ctx context.Context, code string) (*types.Airport, error) {
	c.icaoCalls.Add(1)
	return c.Storage.GetAirportByICAO(ctx, code)
}

func testAirport(id int64, icao, iata, name, city string, relevance int) *types.Airport {
	return &types.Airport{
		ID:           id,
		Ident:        icao + name[:1],
		Type:         types.TypeMediumAirport,
		Name:         name,
		ICAOCode:     types.String(icao),
		IATACode:     types.String(iata),
		Municipality: types.String(city),
		Relevance:    relevance,
	}
}

func ptr[T any](v T) *T { return &v }

// newTestSearcher creates a searcher over an in-memory store holding airports
func newTestSearcher(t *testing.T, airports ...*types.Airport) (*Searcher, *countingStore) {
	t.Helper()

	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	ctx := context.Background()
	for _, a := range airports {
		require.NoError(t, db.UpsertAirport(ctx, a))
	}

	store := &countingStore{Storage: db}
	return NewSearcher(store), store
}

// setupTestSearcher creates a searcher over the standard fixture
func setupTestSearcher(t *testing.T) (*Searcher, *countingStore) {
	t.Helper()

	return newTestSearcher(t,
		testAirport(1, "EGLL", "LHR", "London Heathrow Airport", "London", 1000),
		testAirport(2, "EGKK", "LGW", "London Gatwick Airport", "London", 800),
		testAirport(3, "LFPG", "CDG", "Charles de Gaulle International Airport", "Paris", 900),
		testAirport(4, "LFPO", "ORY", "Paris Orly Airport", "Paris-Orly", 700),
		testAirport(5, "KPRX", "PRX", "Cox Field", "Paris", 10),
		testAirport(6, "", "", "Battersea Heliport", "London", 50),
		testAirport(7, "EGAE", "LDY", "City of Derry Airport", "Londonderry", 100),
	)
}

func resultIDs(results []types.ScoreResult) []int64 {
	out := make([]int64, len(results))
	for i, r := range results {
		out[i] = r.Airport.ID
	}
	return out
}

func TestNewSearcher(t *testing.T) {
	s, store := setupTestSearcher(t)

	assert.Equal(t, storage.Storage(store), s.store)
	assert.NotNil(t, s.cache)
	assert.NotNil(t, s.index)
	assert.NotNil(t, s.lookups)
	assert.Equal(t, cache.DefaultTTL, s.cache.TTL())
}

func TestNewSearcher_WithCache(t *testing.T) {
	_, store := setupTestSearcher(t)
	c := cache.New(store)

	s := NewSearcher(store, WithCache(c))
	assert.Same(t, c, s.cache)
}

func TestFuzzySearch(t *testing.T) {
	s, _ := setupTestSearcher(t)
	ctx := context.Background()

	results, err := s.FuzzySearch(ctx, "EGLL", FuzzyOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, int64(1), results[0].Airport.ID)
	assert.GreaterOrEqual(t, results[0].Score, 100.0)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, DefaultFuzzyMinScore)
		assert.Nil(t, r.Details)
	}

	results, err = s.FuzzySearch(ctx, "EGLL", FuzzyOptions{Limit: ptr(1), IncludeDetails: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Details)
	assert.NotEmpty(t, results[0].Details.Reasons)
}

func TestFuzzySearch_ExplicitZeroBounds(t *testing.T) {
	s, _ := setupTestSearcher(t)
	ctx := context.Background()

	// A zero minimum keeps airports that scored nothing
	results, err := s.FuzzySearch(ctx, "EGLL", FuzzyOptions{Limit: ptr(100), MinScore: ptr(0.0)})
	require.NoError(t, err)
	require.Len(t, results, 7)
	assert.Equal(t, int64(1), results[0].Airport.ID)
	assert.Zero(t, results[len(results)-1].Score)

	defaults, err := s.FuzzySearch(ctx, "EGLL", FuzzyOptions{Limit: ptr(100)})
	require.NoError(t, err)
	assert.Less(t, len(defaults), len(results))

	results, err = s.FuzzySearch(ctx, "EGLL", FuzzyOptions{Limit: ptr(0)})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestShortQueriesSkipStore(t *testing.T) {
	s, store := setupTestSearcher(t)
	ctx := context.Background()

	fuzzyResults, err := s.FuzzySearch(ctx, " a ", FuzzyOptions{})
	require.NoError(t, err)
	assert.Empty(t, fuzzyResults)

	suggestions, err := s.Suggest(ctx, "E", 5)
	require.NoError(t, err)
	assert.Empty(t, suggestions)

	codes, err := s.SmartCodeSearch(ctx, "EG", 5)
	require.NoError(t, err)
	assert.Empty(t, codes)

	cities, err := s.FuzzyCitySearch(ctx, "P", CityOptions{})
	require.NoError(t, err)
	assert.Empty(t, cities)

	enhanced, err := s.EnhancedSearch(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, enhanced)

	assert.Equal(t, int32(0), store.listCalls.Load())
	assert.Equal(t, int32(0), store.patternCalls.Load())
}

func TestSnapshotIsShared(t *testing.T) {
	s, store := setupTestSearcher(t)
	ctx := context.Background()

	_, err := s.FuzzySearch(ctx, "london", FuzzyOptions{})
	require.NoError(t, err)
	_, err = s.Suggest(ctx, "EG", 0)
	require.NoError(t, err)
	_, err = s.FuzzyCitySearch(ctx, "paris", CityOptions{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), store.listCalls.Load())
}

func TestEnhancedSearch(t *testing.T) {
	s, store := setupTestSearcher(t)
	ctx := context.Background()

	results, err := s.EnhancedSearch(ctx, "london", 10)
	require.NoError(t, err)

	// Store matches in relevance order; fuzzy adds nothing new
	assert.Equal(t, []int64{1, 2, 7, 6}, airportIDs(results))
	assert.Equal(t, int32(1), store.patternCalls.Load())
}

func TestEnhancedSearch_SmallLimitSkipsStore(t *testing.T) {
	s, store := setupTestSearcher(t)

	results, err := s.EnhancedSearch(context.Background(), "london", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].ID)
	assert.Equal(t, int32(0), store.patternCalls.Load())
}

func TestEnhancedSearch_FuzzyFillsRemainingSlots(t *testing.T) {
	s, _ := setupTestSearcher(t)

	// A misspelled city has no substring match but fuzzy ones
	results, err := s.EnhancedSearch(context.Background(), "londn", 20)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 20)
	assert.Equal(t, int64(1), results[0].ID)
}

func TestEnhancedSearch_UniqueIDs(t *testing.T) {
	s, _ := setupTestSearcher(t)
	ctx := context.Background()

	for _, q := range []string{"london", "paris", "EGLL", "airport", "LF", "city"} {
		for _, limit := range []int{1, 2, 3, 7, 20} {
			results, err := s.EnhancedSearch(ctx, q, limit)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(results), limit)

			seen := make(map[int64]bool)
			for _, a := range results {
				assert.False(t, seen[a.ID], "duplicate id %d for %q", a.ID, q)
				seen[a.ID] = true
			}
		}
	}
}

func TestSuggest(t *testing.T) {
	s, _ := setupTestSearcher(t)

	codes, err := s.Suggest(context.Background(), "eg", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"EGLL", "EGKK", "EGAE"}, codes)

	codes, err = s.Suggest(context.Background(), "EG", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"EGLL", "EGKK"}, codes)
}

func TestSmartCodeSearch(t *testing.T) {
	s, _ := setupTestSearcher(t)

	matches, err := s.SmartCodeSearch(context.Background(), "EGLX", 0)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	top := matches[0]
	assert.Equal(t, "EGLL", top.ICAOCode)
	assert.Equal(t, "LHR", top.IATACode)
	assert.Equal(t, "London", top.Municipality)
	assert.Contains(t, top.MatchReason, "ICAO fuzzy match")
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Score, CodeSearchMinScore)
		assert.NotEmpty(t, m.ICAOCode)
	}
}

func TestSmartCodeSearch_JoinsReasons(t *testing.T) {
	s, _ := setupTestSearcher(t)

	matches, err := s.SmartCodeSearch(context.Background(), "EGLL", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "ICAO exact match, Phonetic similarity", matches[0].MatchReason)
}

func TestFuzzyCitySearch_ExactCityFirst(t *testing.T) {
	s, _ := setupTestSearcher(t)

	results, err := s.FuzzyCitySearch(context.Background(), "Paris", CityOptions{IncludeDetails: true})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 3)

	// Paris-Orly outscores the exact matches but ranks after them
	assert.Equal(t, []int64{3, 5, 4}, resultIDs(results)[:3])
	assert.Greater(t, results[2].Score, results[0].Score)
	assert.NotNil(t, results[0].Details)
}

func TestFuzzyCitySearch_PrefixCityBeforeHigherScore(t *testing.T) {
	s, _ := newTestSearcher(t,
		testAirport(1, "", "", "Paris Regional Airport", "New Paris", 900),
		testAirport(2, "LFPB", "LBG", "Le Bourget", "Paris-Le Bourget", 500),
		testAirport(3, "", "", "Cox Field", "Paris", 10),
	)

	results, err := s.FuzzyCitySearch(context.Background(), "Paris", CityOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Exact city, then a city starting with the query, then the rest by score
	assert.Equal(t, []int64{3, 2, 1}, resultIDs(results))
	assert.Greater(t, results[2].Score, results[1].Score)
	assert.Greater(t, results[2].Score, results[0].Score)
}

func TestFuzzyCitySearch_SkipsAirportsWithoutCity(t *testing.T) {
	s, _ := setupTestSearcher(t)
	ctx := context.Background()

	db := s.store.(*countingStore).Storage
	require.NoError(t, db.UpsertAirport(ctx, &types.Airport{ID: 99, Ident: "XLON", Name: "London Nowhere Airport"}))

	results, err := s.FuzzyCitySearch(ctx, "london", CityOptions{Limit: 50})
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, int64(99), r.Airport.ID)
	}
}

func TestLookupCode(t *testing.T) {
	s, store := setupTestSearcher(t)
	ctx := context.Background()

	a, err := s.LookupCode(ctx, "egll")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)

	// Served from the lookup cache
	a, err = s.LookupCode(ctx, "EGLL")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int32(1), store.icaoCalls.Load())

	a, err = s.LookupCode(ctx, " cdg ")
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.ID)
}

func TestLookupCode_Errors(t *testing.T) {
	s, _ := setupTestSearcher(t)
	ctx := context.Background()

	_, err := s.LookupCode(ctx, "XX")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = s.LookupCode(ctx, "ZZZZ")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreErrorsPropagate(t *testing.T) {
	errBoom := errors.New("boom")
	ctx := context.Background()

	s, store := setupTestSearcher(t)
	store.listErr = errBoom

	_, err := s.FuzzySearch(ctx, "london", FuzzyOptions{})
	assert.ErrorIs(t, err, errBoom)
	_, err = s.Suggest(ctx, "EG", 0)
	assert.ErrorIs(t, err, errBoom)
	_, err = s.SmartCodeSearch(ctx, "EGLL", 0)
	assert.ErrorIs(t, err, errBoom)
	_, err = s.FuzzyCitySearch(ctx, "paris", CityOptions{})
	assert.ErrorIs(t, err, errBoom)

	s, store = setupTestSearcher(t)
	store.patternErr = errBoom
	_, err = s.EnhancedSearch(ctx, "london", 10)
	assert.ErrorIs(t, err, errBoom)
}

func airportIDs(airports []*types.Airport) []int64 {
	out := make([]int64, len(airports))
	for i, a := range airports {
		out[i] = a.ID
	}
	return out
}
