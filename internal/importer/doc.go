// Package importer loads airport records from CSV into the record store.
//
// The expected input is the OurAirports airports.csv layout: a header row
// followed by one airport per line. Columns are matched by header name, so
// column order does not matter and unknown columns are ignored:
//
//	imp := importer.New(store, importer.WithLogger(logger))
//	stats, err := imp.ImportFile(ctx, "airports.csv", &importer.Config{BatchSize: 1000})
//
// # Pipeline
//
// One goroutine decodes rows and groups them into batches; a second writes
// each batch inside its own transaction. Rows that cannot be converted
// (bad numbers, unknown airport types, missing ident) are skipped and
// reported in Statistics. A store error aborts the whole import, leaving
// previously committed batches in place.
//
// Re-importing the same file is safe: rows are upserted by id.
//
// Only one import may run per Importer at a time; a concurrent call
// returns ErrImportInProgress.
package importer
