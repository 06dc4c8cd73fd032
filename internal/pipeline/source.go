package pipeline

import (
	"context"

	"hretl/pkg/records"
)

// Source yields the batch for Read.
type Source interface {
	Records(ctx context.Context) ([]records.Record, error)
	String() string
}

// Reader runs a query and returns every row. storage.RecordStore satisfies
// it.
type Reader interface {
	ReadAll(ctx context.Context, query string) ([]records.Record, error)
}

// FromRecords wraps an in-memory batch.
func FromRecords(recs []records.Record) Source { return memSource(recs) }

type memSource []records.Record

func (m memSource) Records(context.Context) ([]records.Record, error) { return m, nil }
func (m memSource) String() string                                    { return "memory" }

// FromQuery reads the batch by running query against r.
func FromQuery(r Reader, query string) Source { return querySource{r: r, query: query} }

type querySource struct {
	r     Reader
	query string
}

func (q querySource) Records(ctx context.Context) ([]records.Record, error) {
	return q.r.ReadAll(ctx, q.query)
}

func (q querySource) String() string { return "query " + q.query }

// SourceFunc adapts a function into a Source.
type SourceFunc struct {
	Name string
	Fn   func(ctx context.Context) ([]records.Record, error)
}

func (s SourceFunc) Records(ctx context.Context) ([]records.Record, error) { return s.Fn(ctx) }
func (s SourceFunc) String() string                                        { return s.Name }
