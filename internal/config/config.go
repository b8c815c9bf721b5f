package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dshills/airsearch-mcp/internal/cache"
	"github.com/dshills/airsearch-mcp/internal/searcher"
	"github.com/dshills/airsearch-mcp/internal/storage"
)

// Supported database drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Environment variables that override file settings
const (
	EnvDBDriver        = "AIRSEARCH_DB_DRIVER"
	EnvDBPath          = "AIRSEARCH_DB_PATH"
	EnvDBDSN           = "AIRSEARCH_DB_DSN"
	EnvCacheTTL        = "AIRSEARCH_CACHE_TTL"
	EnvLookupCacheSize = "AIRSEARCH_LOOKUP_CACHE_SIZE"
	EnvMetricsAddr     = "AIRSEARCH_METRICS_ADDR"
	EnvLogLevel        = "AIRSEARCH_LOG_LEVEL"
)

// DefaultEnvFile is loaded when present; variables already set in the environment win
const DefaultEnvFile = ".env"

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrMissingDSN        = errors.New("mysql driver requires a DSN")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or mysql
	Path   string `yaml:"path"`   // SQLite file, "~" is expanded
	DSN    string `yaml:"dsn"`    // MySQL data source name
}

type CacheConfig struct {
	TTLStr       string        `yaml:"ttl"`
	LookupSize   int           `yaml:"lookup_size"`
	LookupTTLStr string        `yaml:"lookup_ttl"`
	TTL          time.Duration `yaml:"-"` // Parsed TTLStr
	LookupTTL    time.Duration `yaml:"-"` // Parsed LookupTTLStr
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // Empty disables the metrics listener
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Config is the complete runtime configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join("~", ".airsearch", "airports.db"),
		},
		Cache: CacheConfig{
			TTLStr:       cache.DefaultTTL.String(),
			LookupSize:   searcher.DefaultLookupCacheLen,
			LookupTTLStr: searcher.DefaultLookupCacheTTL.String(),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration in order: defaults, .env file, YAML file at
// path (skipped when path is empty), AIRSEARCH_* environment overrides.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile loads name into the process environment, ignoring a missing file
func loadEnvFile(name string) error {
	err := godotenv.Load(name)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", name, err)
}

func (c *Config) applyEnv() error {
	if v, ok := lookupEnv(EnvDBDriver); ok {
		c.Database.Driver = v
	}
	if v, ok := lookupEnv(EnvDBPath); ok {
		c.Database.Path = v
	}
	if v, ok := lookupEnv(EnvDBDSN); ok {
		c.Database.DSN = v
	}
	if v, ok := lookupEnv(EnvCacheTTL); ok {
		c.Cache.TTLStr = v
	}
	if v, ok := lookupEnv(EnvLookupCacheSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvLookupCacheSize, v)
		}
		c.Cache.LookupSize = n
	}
	if v, ok := lookupEnv(EnvMetricsAddr); ok {
		c.Metrics.Addr = v
	}
	if v, ok := lookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// normalize parses durations, expands paths and validates the result
func (c *Config) normalize() error {
	var err error
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))

	if c.Cache.TTL, err = parseDuration("cache.ttl", c.Cache.TTLStr, cache.DefaultTTL); err != nil {
		return err
	}
	if c.Cache.LookupTTL, err = parseDuration("cache.lookup_ttl", c.Cache.LookupTTLStr, searcher.DefaultLookupCacheTTL); err != nil {
		return err
	}
	if c.Cache.LookupSize < 0 {
		return fmt.Errorf("%w: cache.lookup_size must not be negative", ErrInvalidConfig)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path, err = expandHome(c.Database.Path); err != nil {
			return err
		}
	case DriverMySQL:
		if c.Database.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Database.Driver)
	}
	return nil
}

func parseDuration(field, s string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, field)
	}
	return d, nil
}

// expandHome replaces a leading "~" with the user's home directory
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// SlogLevel converts the configured level name (debug, info, warn, error)
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalidConfig, l.Level)
	}
	return level, nil
}

// OpenStorage opens the record store selected by the database settings
func OpenStorage(db DatabaseConfig) (*storage.SQLStorage, error) {
	switch strings.ToLower(db.Driver) {
	case DriverSQLite, "":
		return storage.NewSQLiteStorage(db.Path)
	case DriverMySQL:
		if db.DSN == "" {
			return nil, ErrMissingDSN
		}
		return storage.NewMySQLStorage(db.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, db.Driver)
	}
}
