package storage

import (
	"context"
	"fmt"
	"sync"
)

// DDLBuilder renders the statements that create dest with cols if it does
// not exist. Statements must be idempotent.
type DDLBuilder func(dest Destination, cols []Column) []string

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBuilder{}
)

// RegisterDDL registers (or replaces) the DDLBuilder for kind. Backends call
// it from init.
func RegisterDDL(kind string, fn DDLBuilder) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable creates dest through repo using the builder registered for
// kind. Existing tables are left alone.
func EnsureTable(ctx context.Context, kind string, repo Repository, dest Destination, cols []Column) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL builder registered for storage.kind=%q", kind)
	}
	if len(cols) == 0 {
		return fmt.Errorf("ensure table %s: no columns", dest)
	}
	for _, stmt := range fn(dest, cols) {
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure table %s: %w", dest, err)
		}
	}
	return nil
}
