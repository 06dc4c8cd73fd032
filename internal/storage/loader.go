package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hretl/internal/logger"
)

// CopyFn abstracts a backend's bulk insert for one batch. It returns the
// number of rows reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// DefaultBatchSize is used when no batch size is configured.
const DefaultBatchSize = 5000

// LoadBatches splits rows into batches of batchSize and calls copyFn for
// each. It returns the total reported by copyFn and stops at the first error
// or cancellation. Progress is logged after every successful batch.
func LoadBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	return loadBatches(ctx, logger.Logger, columns, rows, batchSize, copyFn)
}

func loadBatches(
	ctx context.Context,
	log *slog.Logger,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total     int64
		batches   int
		start     = time.Now()
		lastFlush = start
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))

		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Error("loader: copy failed", "batch", batches+1, "inserted", n, "total_inserted", total, "error", err)
			return total, err
		}

		batches++
		now := time.Now()
		since := now.Sub(lastFlush)
		rps := float64(0)
		if since > 0 {
			rps = float64(n) / since.Seconds()
		}
		log.Debug("loader: batch flushed",
			"batch", batches,
			"rps", int64(rps),
			"inserted", n,
			"total_inserted", total,
			"elapsed", now.Sub(start).Truncate(time.Millisecond).String(),
		)
		lastFlush = now
	}
	return total, nil
}
