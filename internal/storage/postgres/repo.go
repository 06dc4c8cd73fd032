// Package postgres implements storage.Repository on pgx v5. Writes use the
// COPY protocol straight into the destination table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"hretl/internal/storage"
	"hretl/pkg/records"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository opens a pool and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{pool: pool}, pool.Close, nil
}

// Query runs q and returns every row keyed by column name.
func (r *Repository) Query(ctx context.Context, q string) ([]records.Record, error) {
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	var out []records.Record
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(out), err)
		}
		rec := make(records.Record, len(fds))
		for i, fd := range fds {
			rec[fd.Name] = fromPG(vals[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// fromPG maps pgx driver values onto the plain Go types the rules expect.
func fromPG(v any) any {
	switch t := v.(type) {
	case [16]byte:
		return uuid.UUID(t).String()
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case int32:
		return int64(t)
	case int16:
		return int64(t)
	default:
		return v
	}
}

// CopyFrom streams rows into dest with COPY.
func (r *Repository) CopyFrom(ctx context.Context, dest storage.Destination, columns []string, rows [][]any) (int64, error) {
	n, err := r.pool.CopyFrom(ctx, identifier(dest), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("copy: %s (%s): %w", pgErr.Detail, pgErr.SQLState(), err)
		}
		return n, fmt.Errorf("copy: %w", err)
	}
	return n, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return err
}

// identifier converts a destination into a pgx.Identifier, omitting an
// empty namespace.
func identifier(d storage.Destination) pgx.Identifier {
	if d.Namespace == "" {
		return pgx.Identifier{d.Table}
	}
	return pgx.Identifier{d.Namespace, d.Table}
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a destination as "schema"."table", or "table" alone.
func pgFQN(d storage.Destination) string {
	if d.Namespace == "" {
		return pgIdent(d.Table)
	}
	return pgIdent(d.Namespace) + "." + pgIdent(d.Table)
}
