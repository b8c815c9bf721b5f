package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Migration represents a database schema migration.
// Statements run one at a time since not every driver accepts multi-statement execs.
type Migration struct {
	Version string
	Up      []string
	Down    []string
}

var sqliteMigrations = []Migration{
	{
		Version: "1.0.0",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS schema_version (
				version TEXT PRIMARY KEY,
				applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS airports (
				id INTEGER PRIMARY KEY,
				ident TEXT NOT NULL,
				type TEXT NOT NULL DEFAULT '',
				name TEXT NOT NULL DEFAULT '',
				icao_code TEXT,
				iata_code TEXT,
				gps_code TEXT,
				municipality TEXT,
				country_name TEXT,
				iso_country TEXT,
				continent TEXT,
				latitude_deg REAL,
				longitude_deg REAL,
				elevation_ft INTEGER,
				keywords TEXT,
				scheduled_service INTEGER NOT NULL DEFAULT 0,
				relevance INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_airports_ident ON airports(ident)`,
			`CREATE INDEX IF NOT EXISTS idx_airports_icao_code ON airports(icao_code)`,
			`CREATE INDEX IF NOT EXISTS idx_airports_iata_code ON airports(iata_code)`,
			`CREATE INDEX IF NOT EXISTS idx_airports_country ON airports(iso_country)`,
			`CREATE INDEX IF NOT EXISTS idx_airports_type ON airports(type)`,
			`CREATE INDEX IF NOT EXISTS idx_airports_municipality ON airports(municipality)`,
			`CREATE INDEX IF NOT EXISTS idx_airports_scheduled ON airports(scheduled_service)`,
		},
		Down: []string{
			`DROP TABLE IF EXISTS airports`,
			`DROP TABLE IF EXISTS schema_version`,
		},
	},
	{
		Version: "1.1.0",
		Up: []string{
			`CREATE INDEX IF NOT EXISTS idx_airports_relevance ON airports(relevance DESC, id)`,
		},
		Down: []string{
			`DROP INDEX IF EXISTS idx_airports_relevance`,
		},
	},
}

var mysqlMigrations = []Migration{
	{
		Version: "1.0.0",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS schema_version (
				version VARCHAR(32) PRIMARY KEY,
				applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			) DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS airports (
				id BIGINT PRIMARY KEY,
				ident VARCHAR(32) NOT NULL,
				type VARCHAR(32) NOT NULL DEFAULT '',
				name VARCHAR(255) NOT NULL DEFAULT '',
				icao_code VARCHAR(8),
				iata_code VARCHAR(8),
				gps_code VARCHAR(8),
				municipality VARCHAR(255),
				country_name VARCHAR(255),
				iso_country CHAR(2),
				continent CHAR(2),
				latitude_deg DOUBLE,
				longitude_deg DOUBLE,
				elevation_ft INT,
				keywords TEXT,
				scheduled_service TINYINT(1) NOT NULL DEFAULT 0,
				relevance INT NOT NULL DEFAULT 0,
				INDEX idx_airports_ident (ident),
				INDEX idx_airports_icao_code (icao_code),
				INDEX idx_airports_iata_code (iata_code),
				INDEX idx_airports_country (iso_country),
				INDEX idx_airports_type (type),
				INDEX idx_airports_municipality (municipality),
				INDEX idx_airports_scheduled (scheduled_service)
			) DEFAULT CHARSET=utf8mb4`,
		},
		Down: []string{
			`DROP TABLE IF EXISTS airports`,
			`DROP TABLE IF EXISTS schema_version`,
		},
	},
	{
		Version: "1.1.0",
		Up: []string{
			`CREATE INDEX idx_airports_relevance ON airports(relevance DESC, id)`,
		},
		Down: []string{
			`DROP INDEX idx_airports_relevance ON airports`,
		},
	},
}

// currentVersion returns the highest applied schema version, or 0.0.0 on a fresh database
func currentVersion(ctx context.Context, q querier, d *dialect) (*semver.Version, error) {
	// Check if schema_version table exists
	var tableName string
	err := q.QueryRowContext(ctx, d.schemaTableQuery).Scan(&tableName)
	if err == sql.ErrNoRows {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	rows, err := q.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer func() { _ = rows.Close() }()

	current := semver.MustParse("0.0.0")
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan schema version: %w", err)
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", raw, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}
	return current, rows.Err()
}

// ApplyMigrations runs all pending migrations for the dialect
func ApplyMigrations(ctx context.Context, db *sql.DB, d *dialect) error {
	current, err := currentVersion(ctx, db, d)
	if err != nil {
		return err
	}

	// Run migrations in order
	for _, migration := range d.migrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !current.LessThan(migrationVersion) {
			continue // Already applied
		}

		for _, stmt := range migration.Up {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
			}
		}

		_, err = db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		current = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB, d *dialect) error {
	current, err := currentVersion(ctx, db, d)
	if err != nil {
		return err
	}
	version := current.Original()

	var migration *Migration
	for i := range d.migrations {
		if d.migrations[i].Version == version {
			migration = &d.migrations[i]
			break
		}
	}
	if migration == nil {
		return fmt.Errorf("migration %s not found", version)
	}

	for _, stmt := range migration.Down {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", version, err)
		}
	}

	// The first migration drops schema_version itself
	if current.Equal(semver.MustParse(d.migrations[0].Version)) {
		return nil
	}

	_, err = db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", version)
	if err != nil {
		return fmt.Errorf("failed to remove migration record %s: %w", version, err)
	}

	return nil
}
