package postgres

import (
	"fmt"
	"strings"

	"hretl/internal/storage"
)

func sqlType(k storage.Kind) string {
	switch k {
	case storage.KindInt:
		return "BIGINT"
	case storage.KindFloat:
		return "DOUBLE PRECISION"
	case storage.KindBool:
		return "BOOLEAN"
	case storage.KindTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// createTableSQL renders the DDL that creates dest if it does not exist. All
// columns are nullable.
func createTableSQL(dest storage.Destination, cols []storage.Column) []string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = pgIdent(c.Name) + " " + sqlType(c.Kind)
	}
	var stmts []string
	if dest.Namespace != "" {
		stmts = append(stmts, "CREATE SCHEMA IF NOT EXISTS "+pgIdent(dest.Namespace))
	}
	return append(stmts, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		pgFQN(dest),
		strings.Join(defs, ",\n  "),
	))
}
