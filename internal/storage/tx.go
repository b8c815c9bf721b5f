package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dshills/airsearch-mcp/pkg/types"
)

// sqlTx wraps a SQL transaction
type sqlTx struct {
	tx      *sql.Tx
	storage *SQLStorage
}

func (t *sqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqlTx) querier() querier {
	return t.tx
}

func (t *sqlTx) UpsertAirport(ctx context.Context, a *types.Airport) error {
	return t.storage.upsertAirportWithQuerier(ctx, t.querier(), a)
}

func (t *sqlTx) GetAirport(ctx context.Context, id int64) (*types.Airport, error) {
	return getAirportWhere(ctx, t.querier(), "id", id)
}

func (t *sqlTx) GetAirportByICAO(ctx context.Context, code string) (*types.Airport, error) {
	return getAirportWhere(ctx, t.querier(), "icao_code", strings.ToUpper(code))
}

func (t *sqlTx) GetAirportByIATA(ctx context.Context, code string) (*types.Airport, error) {
	return getAirportWhere(ctx, t.querier(), "iata_code", strings.ToUpper(code))
}

func (t *sqlTx) ListAirports(ctx context.Context) ([]*types.Airport, error) {
	return listAirportsWithQuerier(ctx, t.querier())
}

func (t *sqlTx) FindByPattern(ctx context.Context, fields []Field, substring string, limit int) ([]*types.Airport, error) {
	return findByPatternWithQuerier(ctx, t.querier(), fields, substring, limit)
}

func (t *sqlTx) SearchByCity(ctx context.Context, city string, limit int) ([]*types.Airport, error) {
	return searchByCityWithQuerier(ctx, t.querier(), city, limit)
}

func (t *sqlTx) ListByCountry(ctx context.Context, isoCountry string, limit int) ([]*types.Airport, error) {
	return listByCountryWithQuerier(ctx, t.querier(), isoCountry, limit)
}

func (t *sqlTx) ListByType(ctx context.Context, airportType types.AirportType, limit int) ([]*types.Airport, error) {
	return listByTypeWithQuerier(ctx, t.querier(), airportType, limit)
}

func (t *sqlTx) ListNearby(ctx context.Context, lat, lng, radiusDeg float64, limit int) ([]NearbyAirport, error) {
	return listNearbyWithQuerier(ctx, t.querier(), lat, lng, radiusDeg, limit)
}

func (t *sqlTx) CountryStats(ctx context.Context) ([]CountryStat, error) {
	return countryStatsWithQuerier(ctx, t.querier())
}

func (t *sqlTx) GetStatus(ctx context.Context) (*Status, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier())
}

func (t *sqlTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqlTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, errors.New("nested transactions not supported")
}
