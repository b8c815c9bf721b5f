package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMigrations_Idempotent(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, storage.db, sqliteDialect))

	version, err := currentVersion(ctx, storage.db, sqliteDialect)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version.String())
}

func TestRollbackMigration(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()
	ctx := context.Background()

	require.NoError(t, RollbackMigration(ctx, storage.db, sqliteDialect))
	version, err := currentVersion(ctx, storage.db, sqliteDialect)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version.String())

	require.NoError(t, RollbackMigration(ctx, storage.db, sqliteDialect))
	version, err = currentVersion(ctx, storage.db, sqliteDialect)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", version.String())

	// Nothing left to roll back
	assert.Error(t, RollbackMigration(ctx, storage.db, sqliteDialect))

	// And the schema can be rebuilt
	require.NoError(t, ApplyMigrations(ctx, storage.db, sqliteDialect))
	_, err = storage.ListAirports(ctx)
	assert.NoError(t, err)
}

func TestMigrations_VersionsAscending(t *testing.T) {
	for _, d := range []*dialect{sqliteDialect, mysqlDialect} {
		require.NotEmpty(t, d.migrations, d.name)
		last := d.migrations[len(d.migrations)-1]
		assert.Equal(t, CurrentSchemaVersion, last.Version, d.name)
	}
}

func TestBuildUpsert(t *testing.T) {
	assert.True(t, strings.HasPrefix(sqliteDialect.upsertAirport, "INSERT INTO airports (id, ident,"))
	assert.Contains(t, sqliteDialect.upsertAirport, "ON CONFLICT(id) DO UPDATE SET ident = excluded.ident")
	assert.NotContains(t, sqliteDialect.upsertAirport, "id = excluded.id,")

	assert.Contains(t, mysqlDialect.upsertAirport, "ON DUPLICATE KEY UPDATE ident = VALUES(ident)")
	assert.Equal(t, len(airportColumns), strings.Count(mysqlDialect.upsertAirport, "?"))
}

func TestField_Valid(t *testing.T) {
	for _, f := range DefaultPatternFields {
		assert.True(t, f.Valid(), f)
	}
	assert.True(t, FieldKeywords.Valid())
	assert.False(t, Field("latitude_deg").Valid())
}
