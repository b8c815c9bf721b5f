package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// NewMySQLStorage creates a MySQL-backed store and applies pending migrations.
// The DSN uses the go-sql-driver format, e.g. "user:pass@tcp(host:3306)/airports".
func NewMySQLStorage(dsn string) (*SQLStorage, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := retryWithBackoff(ctx, DefaultRetryConfig(), db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	if err := ApplyMigrations(ctx, db, mysqlDialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLStorage{db: db, dialect: mysqlDialect}, nil
}
