package storage

import (
	"context"
	"fmt"
	"log/slog"

	"hretl/internal/logger"
	"hretl/pkg/records"
)

// openRepository is a test hook that points to New by default.
var openRepository = New

// RecordStore reads and writes whole batches of records. Each call opens its
// own connection and releases it before returning, so a failed write leaves
// nothing behind for the next one.
type RecordStore struct {
	Config Config
	// AutoCreate creates a missing destination table from the columns of
	// the batch being written.
	AutoCreate bool
	// BatchSize bounds the rows per bulk insert. Zero means
	// DefaultBatchSize.
	BatchSize int
	// Lead lists columns that come first when the column order is inferred.
	Lead []string
	// Log receives store and loader diagnostics. Nil means logger.Logger.
	Log *slog.Logger
}

func (s *RecordStore) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logger.Logger
}

// ReadAll runs query and returns every row.
func (s *RecordStore) ReadAll(ctx context.Context, query string) ([]records.Record, error) {
	repo, err := openRepository(ctx, s.Config)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	recs, err := repo.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	s.log().Debug("storage: read", "kind", s.Config.Kind, "rows", len(recs))
	return recs, nil
}

// WriteAll appends recs to dest and returns the number of rows inserted.
// An empty batch is a no-op and opens no connection.
func (s *RecordStore) WriteAll(ctx context.Context, recs []records.Record, dest Destination) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	if dest.IsZero() {
		return 0, fmt.Errorf("write: destination table is empty")
	}

	cols := InferColumns(recs, s.Lead...)
	rows, err := ToRows(recs, cols)
	if err != nil {
		return 0, fmt.Errorf("encode rows for %s: %w", dest, err)
	}

	repo, err := openRepository(ctx, s.Config)
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	if s.AutoCreate {
		if err := EnsureTable(ctx, s.Config.Kind, repo, dest, cols); err != nil {
			return 0, err
		}
	}

	batch := s.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	n, err := loadBatches(ctx, s.log(), Names(cols), rows, batch,
		func(ctx context.Context, columns []string, b [][]any) (int64, error) {
			return repo.CopyFrom(ctx, dest, columns, b)
		})
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", dest, err)
	}
	return n, nil
}
