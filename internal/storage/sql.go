package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/airsearch-mcp/pkg/types"
)

// SQLStorage implements the Storage interface on top of database/sql
type SQLStorage struct {
	db      *sql.DB
	dialect *dialect
}

// Driver returns the database engine name ("sqlite" or "mysql")
func (s *SQLStorage) Driver() string {
	return s.dialect.name
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqlTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// querier returns the DB querier
func (s *SQLStorage) querier() querier {
	return s.db
}

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanAirport reads one row in airportColumns order
func scanAirport(row scanner, extra ...interface{}) (*types.Airport, error) {
	var a types.Airport
	var airportType string
	var icao, iata, gps, municipality, country, iso, continent, keywords sql.NullString
	var lat, lng sql.NullFloat64
	var elevation, scheduled sql.NullInt64

	dest := []interface{}{
		&a.ID, &a.Ident, &airportType, &a.Name,
		&icao, &iata, &gps,
		&municipality, &country, &iso, &continent,
		&lat, &lng, &elevation,
		&keywords, &scheduled, &a.Relevance,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	a.Type = types.AirportType(airportType)
	a.ICAOCode = fromNullString(icao)
	a.IATACode = fromNullString(iata)
	a.GPSCode = fromNullString(gps)
	a.Municipality = fromNullString(municipality)
	a.CountryName = fromNullString(country)
	a.ISOCountry = fromNullString(iso)
	a.Continent = fromNullString(continent)
	a.Keywords = fromNullString(keywords)
	if lat.Valid {
		a.Latitude = &lat.Float64
	}
	if lng.Valid {
		a.Longitude = &lng.Float64
	}
	if elevation.Valid {
		ft := int(elevation.Int64)
		a.ElevationFt = &ft
	}
	a.ScheduledService = scheduled.Valid && scheduled.Int64 != 0

	return &a, nil
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return &ns.String
}

func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// queryAirports runs a query returning airport rows
func queryAirports(ctx context.Context, q querier, query string, args ...interface{}) ([]*types.Airport, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var airports []*types.Airport
	for rows.Next() {
		a, err := scanAirport(rows)
		if err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

// Airport operations

// upsertAirportWithQuerier is the internal implementation that uses a querier
func (s *SQLStorage) upsertAirportWithQuerier(ctx context.Context, q querier, a *types.Airport) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAirport, err)
	}

	_, err := q.ExecContext(ctx, s.dialect.upsertAirport,
		a.ID, a.Ident, string(a.Type), a.Name,
		nullable(a.ICAOCode), nullable(a.IATACode), nullable(a.GPSCode),
		nullable(a.Municipality), nullable(a.CountryName), nullable(a.ISOCountry), nullable(a.Continent),
		nullable(a.Latitude), nullable(a.Longitude), nullable(a.ElevationFt),
		nullable(a.Keywords), a.ScheduledService, a.Relevance,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert airport %d: %w", a.ID, err)
	}
	return nil
}

func (s *SQLStorage) UpsertAirport(ctx context.Context, a *types.Airport) error {
	return s.upsertAirportWithQuerier(ctx, s.querier(), a)
}

// getAirportWhere fetches the first airport matching a single-column condition
func getAirportWhere(ctx context.Context, q querier, column string, value interface{}) (*types.Airport, error) {
	query := airportSelect + " WHERE " + column + " = ? ORDER BY relevance DESC, id LIMIT 1"
	a, err := scanAirport(q.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get airport by %s: %w", column, err)
	}
	return a, nil
}

func (s *SQLStorage) GetAirport(ctx context.Context, id int64) (*types.Airport, error) {
	return getAirportWhere(ctx, s.querier(), "id", id)
}

func (s *SQLStorage) GetAirportByICAO(ctx context.Context, code string) (*types.Airport, error) {
	return getAirportWhere(ctx, s.querier(), "icao_code", strings.ToUpper(code))
}

func (s *SQLStorage) GetAirportByIATA(ctx context.Context, code string) (*types.Airport, error) {
	return getAirportWhere(ctx, s.querier(), "iata_code", strings.ToUpper(code))
}

// Search operations

// listAirportsWithQuerier returns every airport, most relevant first
func listAirportsWithQuerier(ctx context.Context, q querier) ([]*types.Airport, error) {
	airports, err := queryAirports(ctx, q, airportSelect+" ORDER BY relevance DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list airports: %w", err)
	}
	return airports, nil
}

func (s *SQLStorage) ListAirports(ctx context.Context) ([]*types.Airport, error) {
	return listAirportsWithQuerier(ctx, s.querier())
}

// findByPatternWithQuerier matches the substring against any of the fields
func findByPatternWithQuerier(ctx context.Context, q querier, fields []Field, substring string, limit int) ([]*types.Airport, error) {
	if len(fields) == 0 {
		fields = DefaultPatternFields
	}

	conditions := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields)+1)
	pattern := "%" + substring + "%"
	for _, f := range fields {
		if !f.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
		conditions = append(conditions, string(f)+" LIKE ?")
		args = append(args, pattern)
	}
	args = append(args, limitOrDefault(limit))

	query := airportSelect + " WHERE " + strings.Join(conditions, " OR ") +
		" ORDER BY relevance DESC, id LIMIT ?"

	airports, err := queryAirports(ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search airports: %w", err)
	}
	return airports, nil
}

func (s *SQLStorage) FindByPattern(ctx context.Context, fields []Field, substring string, limit int) ([]*types.Airport, error) {
	return findByPatternWithQuerier(ctx, s.querier(), fields, substring, limit)
}

// searchByCityWithQuerier ranks exact city matches, then prefix matches, then the rest
func searchByCityWithQuerier(ctx context.Context, q querier, city string, limit int) ([]*types.Airport, error) {
	query := airportSelect + `
		WHERE municipality LIKE ?
		ORDER BY
			CASE
				WHEN municipality = ? THEN 1
				WHEN municipality LIKE ? THEN 2
				ELSE 3
			END,
			name
		LIMIT ?`

	airports, err := queryAirports(ctx, q, query, "%"+city+"%", city, city+"%", limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search airports by city: %w", err)
	}
	return airports, nil
}

func (s *SQLStorage) SearchByCity(ctx context.Context, city string, limit int) ([]*types.Airport, error) {
	return searchByCityWithQuerier(ctx, s.querier(), city, limit)
}

func listByCountryWithQuerier(ctx context.Context, q querier, isoCountry string, limit int) ([]*types.Airport, error) {
	query := airportSelect + " WHERE iso_country = ? ORDER BY relevance DESC, id LIMIT ?"
	airports, err := queryAirports(ctx, q, query, strings.ToUpper(isoCountry), limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list airports by country: %w", err)
	}
	return airports, nil
}

func (s *SQLStorage) ListByCountry(ctx context.Context, isoCountry string, limit int) ([]*types.Airport, error) {
	return listByCountryWithQuerier(ctx, s.querier(), isoCountry, limit)
}

func listByTypeWithQuerier(ctx context.Context, q querier, airportType types.AirportType, limit int) ([]*types.Airport, error) {
	query := airportSelect + " WHERE type = ? ORDER BY relevance DESC, id LIMIT ?"
	airports, err := queryAirports(ctx, q, query, string(airportType), limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list airports by type: %w", err)
	}
	return airports, nil
}

func (s *SQLStorage) ListByType(ctx context.Context, airportType types.AirportType, limit int) ([]*types.Airport, error) {
	return listByTypeWithQuerier(ctx, s.querier(), airportType, limit)
}

// listNearbyWithQuerier uses a degree box and Manhattan distance, not great-circle distance
func listNearbyWithQuerier(ctx context.Context, q querier, lat, lng, radiusDeg float64, limit int) ([]NearbyAirport, error) {
	query := "SELECT " + strings.Join(airportColumns, ", ") + `,
			ABS(latitude_deg - ?) + ABS(longitude_deg - ?) AS distance
		FROM airports
		WHERE latitude_deg IS NOT NULL
		  AND longitude_deg IS NOT NULL
		  AND ABS(latitude_deg - ?) <= ?
		  AND ABS(longitude_deg - ?) <= ?
		ORDER BY distance ASC, id
		LIMIT ?`

	rows, err := q.QueryContext(ctx, query, lat, lng, lat, radiusDeg, lng, radiusDeg, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list nearby airports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []NearbyAirport
	for rows.Next() {
		var distance float64
		a, err := scanAirport(rows, &distance)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nearby airport: %w", err)
		}
		results = append(results, NearbyAirport{Airport: a, Distance: distance})
	}
	return results, rows.Err()
}

func (s *SQLStorage) ListNearby(ctx context.Context, lat, lng, radiusDeg float64, limit int) ([]NearbyAirport, error) {
	return listNearbyWithQuerier(ctx, s.querier(), lat, lng, radiusDeg, limit)
}

// Statistics operations

func countryStatsWithQuerier(ctx context.Context, q querier) ([]CountryStat, error) {
	query := `
		SELECT
			country_name,
			COUNT(*) AS total_airports,
			COUNT(CASE WHEN type = 'large_airport' THEN 1 END) AS large_airports,
			COUNT(CASE WHEN scheduled_service = 1 THEN 1 END) AS scheduled_airports
		FROM airports
		GROUP BY country_name
		ORDER BY total_airports DESC, country_name
		LIMIT 20`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query country stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []CountryStat
	for rows.Next() {
		var stat CountryStat
		var name sql.NullString
		if err := rows.Scan(&name, &stat.TotalAirports, &stat.LargeAirports, &stat.ScheduledAirports); err != nil {
			return nil, fmt.Errorf("failed to scan country stats: %w", err)
		}
		stat.CountryName = name.String
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func (s *SQLStorage) CountryStats(ctx context.Context) ([]CountryStat, error) {
	return countryStatsWithQuerier(ctx, s.querier())
}

func (s *SQLStorage) getStatusWithQuerier(ctx context.Context, q querier) (*Status, error) {
	status := &Status{
		Driver:    s.dialect.name,
		BuildMode: BuildMode,
	}

	err := q.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT iso_country),
			COUNT(CASE WHEN type = 'large_airport' THEN 1 END),
			COUNT(CASE WHEN scheduled_service = 1 THEN 1 END)
		FROM airports
	`).Scan(&status.TotalAirports, &status.Countries, &status.LargeAirports, &status.ScheduledAirports)
	if err != nil {
		return nil, fmt.Errorf("failed to count airports: %w", err)
	}

	version, err := currentVersion(ctx, q, s.dialect)
	if err != nil {
		return nil, err
	}
	status.SchemaVersion = version.String()

	return status, nil
}

func (s *SQLStorage) GetStatus(ctx context.Context) (*Status, error) {
	return s.getStatusWithQuerier(ctx, s.querier())
}
