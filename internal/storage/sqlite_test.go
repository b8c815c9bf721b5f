package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/airsearch-mcp/pkg/types"
)

func setupTestDB(t *testing.T) *SQLStorage {
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	return storage
}

func float(f float64) *float64 { return &f }

func testAirport(id int64, ident string, typ types.AirportType, name, icao, iata, city, iso, country string, relevance int) *types.Airport {
	return &types.Airport{
		ID:           id,
		Ident:        ident,
		Type:         typ,
		Name:         name,
		ICAOCode:     types.String(icao),
		IATACode:     types.String(iata),
		Municipality: types.String(city),
		ISOCountry:   types.String(iso),
		CountryName:  types.String(country),
		Relevance:    relevance,
	}
}

// seedAirports loads a small fixture covering London, Paris and a few edge cases
func seedAirports(t *testing.T, s *SQLStorage) {
	t.Helper()
	uk, fr, us := "United Kingdom", "France", "United States"

	lhr := testAirport(1, "EGLL", types.TypeLargeAirport, "London Heathrow Airport", "EGLL", "LHR", "London", "GB", uk, 1000)
	lhr.Latitude, lhr.Longitude = float(51.47), float(-0.4543)
	lhr.ScheduledService = true

	lgw := testAirport(2, "EGKK", types.TypeLargeAirport, "London Gatwick Airport", "EGKK", "LGW", "London", "GB", uk, 800)
	lgw.Latitude, lgw.Longitude = float(51.148), float(-0.19)
	lgw.ScheduledService = true

	lcy := testAirport(3, "EGLC", types.TypeMediumAirport, "London City Airport", "EGLC", "LCY", "London", "GB", uk, 500)
	lcy.Latitude, lcy.Longitude = float(51.5053), float(0.0553)
	lcy.ScheduledService = true

	cdg := testAirport(4, "LFPG", types.TypeLargeAirport, "Charles de Gaulle International Airport", "LFPG", "CDG", "Paris", "FR", fr, 900)
	cdg.Latitude, cdg.Longitude = float(49.0097), float(2.5479)
	cdg.ScheduledService = true

	ory := testAirport(5, "LFPO", types.TypeLargeAirport, "Paris-Orly Airport", "LFPO", "ORY", "Paris", "FR", fr, 700)
	ory.Latitude, ory.Longitude = float(48.7233), float(2.3794)
	ory.ScheduledService = true

	cox := testAirport(6, "KPRX", types.TypeSmallAirport, "Cox Field", "KPRX", "PRX", "Paris", "US", us, 10)

	heli := testAirport(7, "GB-0001", types.TypeHeliport, "Battersea Heliport", "", "", "London", "GB", uk, 50)

	ldy := testAirport(8, "EGAE", types.TypeMediumAirport, "City of Derry Airport", "EGAE", "LDY", "Londonderry", "GB", uk, 100)
	ldy.Latitude, ldy.Longitude = float(55.0428), float(-7.1611)
	ldy.ScheduledService = true

	ctx := context.Background()
	for _, a := range []*types.Airport{lhr, lgw, lcy, cdg, ory, cox, heli, ldy} {
		require.NoError(t, s.UpsertAirport(ctx, a))
	}
}

func ids(airports []*types.Airport) []int64 {
	out := make([]int64, len(airports))
	for i, a := range airports {
		out[i] = a.ID
	}
	return out
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	assert.NotNil(t, storage.db)
	assert.Equal(t, "sqlite", storage.Driver())
}

func TestClose(t *testing.T) {
	storage := setupTestDB(t)
	err := storage.Close()
	assert.NoError(t, err)
}

func TestUpsertAirport_RoundTrip(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	elevation := 83
	a := testAirport(1, "EGLL", types.TypeLargeAirport, "London Heathrow Airport", "EGLL", "LHR", "London", "GB", "United Kingdom", 1000)
	a.Latitude, a.Longitude = float(51.47), float(-0.4543)
	a.ElevationFt = &elevation
	a.Keywords = types.String("LON, Londres")
	a.ScheduledService = true

	require.NoError(t, storage.UpsertAirport(ctx, a))

	got, err := storage.GetAirport(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestUpsertAirport_NullableFieldsStayAbsent(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	require.NoError(t, storage.UpsertAirport(ctx, &types.Airport{ID: 42, Ident: "00A"}))

	got, err := storage.GetAirport(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got.ICAOCode)
	assert.Nil(t, got.Municipality)
	assert.Nil(t, got.Latitude)
	assert.Nil(t, got.ElevationFt)
	assert.False(t, got.ScheduledService)
	assert.False(t, got.HasCode())
}

func TestUpsertAirport_Updates(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()
	seedAirports(t, storage)

	a, err := storage.GetAirport(ctx, 3)
	require.NoError(t, err)
	a.Name = "London City"
	a.Relevance = 2000
	require.NoError(t, storage.UpsertAirport(ctx, a))

	got, err := storage.GetAirport(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "London City", got.Name)

	all, err := storage.ListAirports(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.Equal(t, int64(3), all[0].ID)
}

func TestUpsertAirport_Invalid(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	err := storage.UpsertAirport(context.Background(), &types.Airport{ID: 0, Ident: "X"})
	assert.ErrorIs(t, err, ErrInvalidAirport)
	assert.ErrorIs(t, err, types.ErrInvalidAirportID)
}

func TestGetAirport_NotFound(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	_, err := storage.GetAirport(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = storage.GetAirportByICAO(ctx, "ZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = storage.GetAirportByIATA(ctx, "ZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAirportByCode(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()
	seedAirports(t, storage)

	a, err := storage.GetAirportByICAO(ctx, "egll")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)

	a, err = storage.GetAirportByIATA(ctx, "cdg")
	require.NoError(t, err)
	assert.Equal(t, int64(4), a.ID)
}

func TestListAirports_OrderedByRelevance(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	seedAirports(t, storage)

	all, err := storage.ListAirports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 2, 5, 3, 8, 7, 6}, ids(all))
}

func TestListAirports_Empty(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	all, err := storage.ListAirports(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFindByPattern(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()
	seedAirports(t, storage)

	tests := []struct {
		name      string
		fields    []Field
		substring string
		limit     int
		want      []int64
	}{
		{"default fields", nil, "london", 0, []int64{1, 2, 3, 8, 7}},
		{"limit", nil, "london", 2, []int64{1, 2}},
		{"iata code", []Field{FieldIATACode}, "LHR", 0, []int64{1}},
		{"case insensitive", []Field{FieldIATACode}, "lhr", 0, []int64{1}},
		{"country name", []Field{FieldCountryName}, "France", 0, []int64{4, 5}},
		{"no match", nil, "zzzz", 0, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.FindByPattern(ctx, tt.fields, tt.substring, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFindByPattern_UnknownField(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	_, err := storage.FindByPattern(context.Background(), []Field{"name; DROP TABLE airports"}, "x", 10)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSearchByCity(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	seedAirports(t, storage)

	got, err := storage.SearchByCity(context.Background(), "London", 10)
	require.NoError(t, err)
	// Exact city matches by name, then prefix matches
	assert.Equal(t, []int64{7, 3, 2, 1, 8}, ids(got))
}

func TestListByCountry(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	seedAirports(t, storage)

	got, err := storage.ListByCountry(context.Background(), "gb", 50)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 8, 7}, ids(got))
}

func TestListByType(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	seedAirports(t, storage)

	got, err := storage.ListByType(context.Background(), types.TypeLargeAirport, 50)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 2, 5}, ids(got))
}

func TestListNearby(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	seedAirports(t, storage)

	got, err := storage.ListNearby(context.Background(), 51.47, -0.45, 1.0, 20)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(1), got[0].Airport.ID)
	assert.Equal(t, int64(3), got[1].Airport.ID)
	assert.Equal(t, int64(2), got[2].Airport.ID)
	assert.InDelta(t, 0.0043, got[0].Distance, 1e-6)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
	}
}

func TestCountryStats(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	seedAirports(t, storage)

	stats, err := storage.CountryStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, CountryStat{CountryName: "United Kingdom", TotalAirports: 5, LargeAirports: 2, ScheduledAirports: 4}, stats[0])
	assert.Equal(t, CountryStat{CountryName: "France", TotalAirports: 2, LargeAirports: 2, ScheduledAirports: 2}, stats[1])
	assert.Equal(t, "United States", stats[2].CountryName)
}

func TestGetStatus(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	seedAirports(t, storage)

	status, err := storage.GetStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, status.TotalAirports)
	assert.Equal(t, 3, status.Countries)
	assert.Equal(t, 4, status.LargeAirports)
	assert.Equal(t, 6, status.ScheduledAirports)
	assert.Equal(t, CurrentSchemaVersion, status.SchemaVersion)
	assert.Equal(t, "sqlite", status.Driver)
	assert.Equal(t, BuildMode, status.BuildMode)
}

func TestTransaction_CommitAndRollback(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertAirport(ctx, &types.Airport{ID: 1, Ident: "EGLL", ICAOCode: types.String("EGLL")}))

	// Visible inside the transaction
	a, err := tx.GetAirportByICAO(ctx, "EGLL")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	require.NoError(t, tx.Rollback())

	_, err = storage.GetAirport(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	tx, err = storage.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertAirport(ctx, &types.Airport{ID: 1, Ident: "EGLL"}))
	require.NoError(t, tx.Commit())

	_, err = storage.GetAirport(ctx, 1)
	assert.NoError(t, err)
}

func TestTransaction_NestedNotSupported(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)
}
