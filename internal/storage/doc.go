// Package storage provides SQL persistence for airport records.
//
// The storage layer manages a single airports table plus a schema_version
// table used by the migration runner. Two engines are supported:
//   - SQLite (default), through modernc.org/sqlite or, with the sqlite_cgo
//     build tag, github.com/mattn/go-sqlite3
//   - MySQL, through github.com/go-sql-driver/mysql
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.airsearch/airports.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	lhr, err := db.GetAirportByIATA(ctx, "LHR")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // ...
//	}
//
// # Pattern Search
//
// FindByPattern matches a substring against a whitelisted set of columns and
// returns the most relevant airports first:
//
//	airports, err := db.FindByPattern(ctx,
//	    []storage.Field{storage.FieldName, storage.FieldMunicipality}, "heath", 10)
//
// Passing no fields searches DefaultPatternFields. A column outside the
// whitelist yields ErrUnknownField.
//
// # Transactions
//
// Use transactions for bulk writes:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	for _, a := range batch {
//	    if err := tx.UpsertAirport(ctx, a); err != nil {
//	        return err
//	    }
//	}
//	return tx.Commit()
//
// # Build Tags
//
// Pure Go build (default):
//
//	CGO_ENABLED=0 go build ./...
//
// CGO build (sqlite_cgo tag):
//
//	CGO_ENABLED=1 go build -tags "sqlite_cgo" ./...
package storage
