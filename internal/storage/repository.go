// Package storage contains the storage-agnostic contracts shared by the
// database backends: the Repository interface, a registry of backend
// factories keyed by kind, destination naming, column inference for
// auto-created tables, and a batched loader.
//
// Backends register themselves at init time; import
// hretl/internal/storage/all to enable every built-in kind.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"hretl/pkg/records"
)

// Repository is one open connection to a backend.
type Repository interface {
	// Query runs a SELECT and returns every row as a record keyed by column
	// name.
	Query(ctx context.Context, query string) ([]records.Record, error)
	// CopyFrom appends rows, aligned to columns, to dest using the backend's
	// bulk primitive and returns the number of rows inserted.
	CopyFrom(ctx context.Context, dest Destination, columns []string, rows [][]any) (int64, error)
	// Exec runs a statement that returns no rows (typically DDL).
	Exec(ctx context.Context, sql string) error
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind string // "postgres", "mssql", "mysql", "sqlite"
	DSN  string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

// ErrUnsupportedKind is returned by New for kinds nobody registered.
var ErrUnsupportedKind = errors.New("unsupported storage.kind")

type unsupportedKindError string

func (e unsupportedKindError) Error() string { return "unsupported storage.kind=" + string(e) }
func (e unsupportedKindError) Unwrap() error { return ErrUnsupportedKind }

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, unsupportedKindError(cfg.Kind)
	}
	repo, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Kind, err)
	}
	return repo, nil
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
