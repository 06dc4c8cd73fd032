package mssql

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
		return "FLOAT"
	case storage.KindBool:
		return "BIT"
	case storage.KindTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

// createTableSQL renders guarded DDL; SQL Server has no IF NOT EXISTS for
// tables or schemas.
func createTableSQL(dest storage.Destination, cols []storage.Column) []string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = msIdent(c.Name) + " " + sqlType(c.Kind) + " NULL"
	}
	var stmts []string
	if dest.Namespace != "" {
		stmts = append(stmts, fmt.Sprintf(
			"IF SCHEMA_ID(%s) IS NULL EXEC(%s)",
			msLiteral(dest.Namespace),
			msLiteral("CREATE SCHEMA "+msIdent(dest.Namespace)),
		))
	}
	return append(stmts, fmt.Sprintf(
		"IF OBJECT_ID(%s, N'U') IS NULL CREATE TABLE %s (\n  %s\n)",
		msLiteral(msFQN(dest)),
		msFQN(dest),
		strings.Join(defs, ",\n  "),
	))
}
