package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override so the host environment cannot leak into a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDBDriver, EnvDBPath, EnvDBDSN, EnvCacheTTL, EnvLookupCacheSize, EnvMetricsAddr, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, filepath.Join(home, ".airsearch", "airports.db"), cfg.Database.Path)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.LookupTTL)
	assert.Equal(t, 1024, cfg.Cache.LookupSize)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "airsearch.yaml", `
database:
  driver: MySQL
  dsn: user:pass@tcp(localhost:3306)/airports
cache:
  ttl: 5m
  lookup_size: 64
  lookup_ttl: 30s
metrics:
  addr: ":9090"
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/airports", cfg.Database.DSN)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.LookupTTL)
	assert.Equal(t, 64, cfg.Cache.LookupSize)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "airsearch.yaml", "cache:\n  ttl: 5m\nlog:\n  level: debug\n")
	dbPath := filepath.Join(t.TempDir(), "airports.db")

	t.Setenv(EnvCacheTTL, "1h")
	t.Setenv(EnvDBPath, dbPath)
	t.Setenv(EnvLookupCacheSize, "7")
	t.Setenv(EnvMetricsAddr, "127.0.0.1:9100")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, dbPath, cfg.Database.Path)
	assert.Equal(t, 7, cfg.Cache.LookupSize)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{"unknown driver", map[string]string{EnvDBDriver: "postgres"}, ErrUnsupportedDriver},
		{"mysql without dsn", map[string]string{EnvDBDriver: "mysql"}, ErrMissingDSN},
		{"bad ttl", map[string]string{EnvCacheTTL: "soon"}, ErrInvalidConfig},
		{"zero ttl", map[string]string{EnvCacheTTL: "0s"}, ErrInvalidConfig},
		{"bad lookup size", map[string]string{EnvLookupCacheSize: "many"}, ErrInvalidConfig},
		{"bad log level", map[string]string{EnvLogLevel: "loud"}, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "bad.yaml", "database: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config")
}

func TestLoadEnvFile(t *testing.T) {
	const key = "AIRSEARCH_TEST_ENV_FILE_VALUE"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	path := writeFile(t, ".env", key+"=from-file\n")
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv(key))

	// Missing files are not an error
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env")))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandHome("~/data/airports.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "airports.db"), got)

	got, err = expandHome("/var/lib/airports.db")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/airports.db", got)

	got, err = expandHome(":memory:")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", got)
}

func TestOpenStorage(t *testing.T) {
	store, err := OpenStorage(DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	assert.NoError(t, store.Close())

	_, err = OpenStorage(DatabaseConfig{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)

	_, err = OpenStorage(DatabaseConfig{Driver: DriverMySQL})
	assert.ErrorIs(t, err, ErrMissingDSN)
}
