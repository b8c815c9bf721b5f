package storage

import (
	"fmt"
	"strings"
)

// airportColumns is the column order used by every airport read and write
var airportColumns = []string{
	"id", "ident", "type", "name",
	"icao_code", "iata_code", "gps_code",
	"municipality", "country_name", "iso_country", "continent",
	"latitude_deg", "longitude_deg", "elevation_ft",
	"keywords", "scheduled_service", "relevance",
}

var airportSelect = "SELECT " + strings.Join(airportColumns, ", ") + " FROM airports"

// dialect captures the SQL that differs between database engines
type dialect struct {
	name             string
	upsertAirport    string
	schemaTableQuery string // Returns a row when schema_version exists
	migrations       []Migration
}

var sqliteDialect = &dialect{
	name:             "sqlite",
	upsertAirport:    buildUpsert("ON CONFLICT(id) DO UPDATE SET", "%s = excluded.%s"),
	schemaTableQuery: "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'",
	migrations:       sqliteMigrations,
}

var mysqlDialect = &dialect{
	name:          "mysql",
	upsertAirport: buildUpsert("ON DUPLICATE KEY UPDATE", "%s = VALUES(%s)"),
	schemaTableQuery: `SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = 'schema_version'`,
	migrations: mysqlMigrations,
}

// buildUpsert renders an insert of every airport column that updates all but the id on conflict
func buildUpsert(clause, assign string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(airportColumns)), ", ")

	updates := make([]string, 0, len(airportColumns)-1)
	for _, col := range airportColumns[1:] {
		updates = append(updates, fmt.Sprintf(assign, col, col))
	}

	return fmt.Sprintf("INSERT INTO airports (%s) VALUES (%s) %s %s",
		strings.Join(airportColumns, ", "), placeholders, clause, strings.Join(updates, ", "))
}
