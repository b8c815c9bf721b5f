package storage

import (
	"context"
	"errors"

	"github.com/dshills/airsearch-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested airport doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrUnknownField is returned when a pattern search names a column outside the whitelist
	ErrUnknownField = errors.New("unknown search field")
	// ErrInvalidAirport is returned when an airport fails validation before a write
	ErrInvalidAirport = errors.New("invalid airport")
)

// DefaultLimit applies to list queries called with a non-positive limit
const DefaultLimit = 20

// Storage defines the interface for persisting and querying airport records
type Storage interface {
	// Airport operations
	UpsertAirport(ctx context.Context, airport *types.Airport) error
	GetAirport(ctx context.Context, id int64) (*types.Airport, error)
	GetAirportByICAO(ctx context.Context, code string) (*types.Airport, error)
	GetAirportByIATA(ctx context.Context, code string) (*types.Airport, error)

	// Search operations
	ListAirports(ctx context.Context) ([]*types.Airport, error)
	FindByPattern(ctx context.Context, fields []Field, substring string, limit int) ([]*types.Airport, error)
	SearchByCity(ctx context.Context, city string, limit int) ([]*types.Airport, error)
	ListByCountry(ctx context.Context, isoCountry string, limit int) ([]*types.Airport, error)
	ListByType(ctx context.Context, airportType types.AirportType, limit int) ([]*types.Airport, error)
	ListNearby(ctx context.Context, lat, lng, radiusDeg float64, limit int) ([]NearbyAirport, error)

	// Statistics operations
	CountryStats(ctx context.Context) ([]CountryStat, error)
	GetStatus(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Field is a searchable airport column
type Field string

const (
	FieldName         Field = "name"
	FieldICAOCode     Field = "icao_code"
	FieldIATACode     Field = "iata_code"
	FieldMunicipality Field = "municipality"
	FieldKeywords     Field = "keywords"
	FieldCountryName  Field = "country_name"
)

// DefaultPatternFields are searched when FindByPattern is given no fields
var DefaultPatternFields = []Field{FieldName, FieldICAOCode, FieldIATACode, FieldMunicipality}

var searchableFields = map[Field]struct{}{
	FieldName:         {},
	FieldICAOCode:     {},
	FieldIATACode:     {},
	FieldMunicipality: {},
	FieldKeywords:     {},
	FieldCountryName:  {},
}

// Valid reports whether the field may be used in a pattern search
func (f Field) Valid() bool {
	_, ok := searchableFields[f]
	return ok
}

// NearbyAirport is an airport with its distance from a query point
type NearbyAirport struct {
	Airport  *types.Airport
	Distance float64 // Manhattan distance in degrees
}

// CountryStat summarizes the airports of one country
type CountryStat struct {
	CountryName       string
	TotalAirports     int
	LargeAirports     int
	ScheduledAirports int
}

// Status contains statistics about the airport database
type Status struct {
	TotalAirports     int
	Countries         int
	LargeAirports     int
	ScheduledAirports int
	SchemaVersion     string
	Driver            string
	BuildMode         string
}
