// Package all wires all built-in storage backends into the storage factory.
//
// Importing it (typically as a blank import from cmd/etl) runs the init
// functions of each backend, which register their factories and DDL
// builders. The following kinds become available:
//
//   - "postgres" (hretl/internal/storage/postgres)
//   - "mssql"    (hretl/internal/storage/mssql)
//   - "mysql"    (hretl/internal/storage/mysql)
//   - "sqlite"   (hretl/internal/storage/sqlite)
//
// A binary that needs only a subset can import the backends directly.
package all

import (
	_ "hretl/internal/storage/mssql"
	_ "hretl/internal/storage/mysql"
	_ "hretl/internal/storage/postgres"
	_ "hretl/internal/storage/sqlite"
)
