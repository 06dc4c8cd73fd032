package sqlite

import (
	"fmt"
	"strings"

	"hretl/internal/storage"
)

// sqlType maps column kinds onto SQLite type affinities. Timestamps are
// stored as text.
func sqlType(k storage.Kind) string {
	switch k {
	case storage.KindInt, storage.KindBool:
		return "INTEGER"
	case storage.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func createTableSQL(dest storage.Destination, cols []storage.Column) []string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = sqlIdent(c.Name) + " " + sqlType(c.Kind)
	}
	return []string{fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		tableName(dest),
		strings.Join(defs, ",\n  "),
	)}
}
