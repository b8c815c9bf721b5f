package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jszwec/csvutil"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/airsearch-mcp/internal/storage"
	"github.com/dshills/airsearch-mcp/pkg/types"
)

// Defaults for Config
const (
	DefaultBatchSize = 500
	maxErrorMessages = 100
)

// ErrImportInProgress is returned when another import holds the lock
var ErrImportInProgress = errors.New("import already in progress")

// Importer loads OurAirports-style CSV data into the record store
type Importer struct {
	storage storage.Storage
	lock    ImportLock
	logger  *slog.Logger
}

// Config contains configuration for an import
type Config struct {
	BatchSize int // Rows committed per transaction (default: 500)
}

// Statistics contains statistics about an import
type Statistics struct {
	RowsImported  int
	RowsFailed    int
	Batches       int
	Duration      time.Duration
	ErrorMessages []string // Capped; RowsFailed holds the true count
}

// Option configures an Importer
type Option func(*Importer)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(imp *Importer) {
		if logger != nil {
			imp.logger = logger
		}
	}
}

// New creates a new Importer writing to store
func New(store storage.Storage, opts ...Option) *Importer {
	imp := &Importer{
		storage: store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// ImportFile imports the CSV file at path
func (imp *Importer) ImportFile(ctx context.Context, path string, config *Config) (*Statistics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return imp.Import(ctx, f, config)
}

// Import reads CSV rows from r and upserts them in batches.
// Rows that fail to convert are counted and skipped; store errors abort the import.
func (imp *Importer) Import(ctx context.Context, r io.Reader, config *Config) (*Statistics, error) {
	if !imp.lock.TryAcquire() {
		return nil, ErrImportInProgress
	}
	defer imp.lock.Release()

	batchSize := DefaultBatchSize
	if config != nil && config.BatchSize > 0 {
		batchSize = config.BatchSize
	}

	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	decoder, err := csvutil.NewDecoder(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	// The decoder feeds batches to a single writer so each batch is one transaction
	batches := make(chan []*types.Airport)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(batches)
		return imp.decode(gctx, decoder, batchSize, batches, stats)
	})

	g.Go(func() error {
		for batch := range batches {
			if err := imp.writeBatch(gctx, batch); err != nil {
				return err
			}
			stats.RowsImported += len(batch)
			stats.Batches++
			imp.logger.Debug("import batch committed", "rows", len(batch), "total", stats.RowsImported)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to import airports: %w", err)
	}

	stats.Duration = time.Since(startTime)
	imp.logger.Info("import finished",
		"imported", stats.RowsImported,
		"failed", stats.RowsFailed,
		"batches", stats.Batches,
		"duration", stats.Duration)
	return stats, nil
}

// decode reads rows until EOF, sending full batches on out.
// Only the decoder goroutine touches stats.RowsFailed and stats.ErrorMessages.
func (imp *Importer) decode(ctx context.Context, decoder *csvutil.Decoder, batchSize int,
	out chan<- []*types.Airport, stats *Statistics) error {

	send := func(batch []*types.Airport) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- batch:
			return nil
		}
	}

	batch := make([]*types.Airport, 0, batchSize)
	for rowNum := 1; ; rowNum++ {
		var row csvRow
		if err := decoder.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return fmt.Errorf("failed to decode CSV: %w", err)
			}
			imp.recordFailure(stats, rowNum, err)
			continue
		}

		a, err := row.toAirport()
		if err != nil {
			imp.recordFailure(stats, rowNum, err)
			continue
		}
		batch = append(batch, a)

		if len(batch) == batchSize {
			if err := send(batch); err != nil {
				return err
			}
			batch = make([]*types.Airport, 0, batchSize)
		}
	}

	if len(batch) > 0 {
		return send(batch)
	}
	return nil
}

func (imp *Importer) recordFailure(stats *Statistics, rowNum int, err error) {
	stats.RowsFailed++
	rowsTotal.WithLabelValues("failed").Inc()
	if len(stats.ErrorMessages) < maxErrorMessages {
		stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("row %d: %v", rowNum, err))
	}
	imp.logger.Debug("skipping CSV row", "row", rowNum, "error", err)
}

// writeBatch upserts a batch within a transaction
func (imp *Importer) writeBatch(ctx context.Context, batch []*types.Airport) error {
	tx, err := imp.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range batch {
		if err := tx.UpsertAirport(ctx, a); err != nil {
			return fmt.Errorf("failed to store airport %d: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	rowsTotal.WithLabelValues("imported").Add(float64(len(batch)))
	batchesTotal.Inc()
	return nil
}
