// Package datasource opens byte sources for the job and decodes them into
// records.
package datasource

import (
	"context"
	"io"
)

// Source opens a byte stream. Implementations live in file and httpds.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
