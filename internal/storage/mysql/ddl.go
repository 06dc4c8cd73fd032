package mysql

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
		return "DOUBLE"
	case storage.KindBool:
		return "BOOLEAN"
	case storage.KindTimestamp:
		return "DATETIME"
	default:
		return "LONGTEXT"
	}
}

// createTableSQL renders the DDL that creates dest if it does not exist. A
// namespace is a database in MySQL.
func createTableSQL(dest storage.Destination, cols []storage.Column) []string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = myIdent(c.Name) + " " + sqlType(c.Kind) + " NULL"
	}
	var stmts []string
	if dest.Namespace != "" {
		stmts = append(stmts, "CREATE DATABASE IF NOT EXISTS "+myIdent(dest.Namespace))
	}
	return append(stmts, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		myFQN(dest),
		strings.Join(defs, ",\n  "),
	))
}
