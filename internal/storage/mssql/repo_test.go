package mssql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"sync"
	"testing"

	"hretl/internal/storage"
)

// TestMsIdent verifies that msIdent properly brackets SQL Server identifiers
// and escapes closing brackets.
func TestMsIdent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"simple", "[simple]"},
		{"dbo", "[dbo]"},
		{"brack]et", "[brack]]et]"},
		{`weird]]name`, `[weird]]]]name]`},
	}
	for _, tc := range cases {
		if got := msIdent(tc.in); got != tc.want {
			t.Fatalf("msIdent(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestMsFQN(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   storage.Destination
		want string
	}{
		{storage.Destination{Table: "table"}, "[table]"},
		{storage.Destination{Namespace: "tmp", Table: "employees_processed"}, "[tmp].[employees_processed]"},
	}
	for _, tc := range cases {
		if got := msFQN(tc.in); got != tc.want {
			t.Fatalf("msFQN(%v) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	cols := []storage.Column{
		{Name: "id", Kind: storage.KindInt},
		{Name: "reason", Kind: storage.KindText},
		{Name: "join_date", Kind: storage.KindTimestamp},
		{Name: "ok", Kind: storage.KindBool},
		{Name: "rate", Kind: storage.KindFloat},
	}
	stmts := createTableSQL(storage.Destination{Namespace: "tmp", Table: "employees_unprocessed"}, cols)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if want := "IF SCHEMA_ID(N'tmp') IS NULL EXEC(N'CREATE SCHEMA [tmp]')"; stmts[0] != want {
		t.Fatalf("schema stmt = %q, want %q", stmts[0], want)
	}
	for _, want := range []string{
		"IF OBJECT_ID(N'[tmp].[employees_unprocessed]', N'U') IS NULL",
		"CREATE TABLE [tmp].[employees_unprocessed]",
		"[id] BIGINT NULL",
		"[reason] NVARCHAR(MAX) NULL",
		"[join_date] DATETIME2 NULL",
		"[ok] BIT NULL",
		"[rate] FLOAT NULL",
	} {
		if !strings.Contains(stmts[1], want) {
			t.Fatalf("create stmt missing %q:\n%s", want, stmts[1])
		}
	}
}

func TestMsLiteral(t *testing.T) {
	t.Parallel()

	if got := msLiteral("o'neil"); got != "N'o''neil'" {
		t.Fatalf("msLiteral = %q", got)
	}
}

// TestCopyFromEmptyRows verifies that CopyFrom short-circuits when no rows
// are provided and does not require a live database connection.
func TestCopyFromEmptyRows(t *testing.T) {
	t.Parallel()

	r := &Repository{db: nil}
	got, err := r.CopyFrom(context.Background(), storage.Destination{Table: "t"}, []string{"id", "name"}, nil)
	if err != nil {
		t.Fatalf("CopyFrom(nil...) error = %v, want nil", err)
	}
	if got != 0 {
		t.Fatalf("CopyFrom(nil...) = %d, want 0", got)
	}
}

// --- Test driver plumbing for exercising Exec and CopyFrom without a real DB --

type errDriver struct{}

type errConn struct{}

func (d *errDriver) Open(name string) (driver.Conn, error) {
	return &errConn{}, nil
}

func (c *errConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("unexpected Prepare call")
}

func (c *errConn) Close() error { return nil }

func (c *errConn) Begin() (driver.Tx, error) {
	return nil, errors.New("begin (legacy) should not be called")
}

// BeginTx always fails, to exercise the error path in Repository.CopyFrom.
func (c *errConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return nil, errors.New("begin failed")
}

func (c *errConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return nil, errors.New("exec failed")
}

func (c *errConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return nil, errors.New("query failed")
}

var (
	testDriverOnce sync.Once
	testDriverName = "mssql_test_err"
)

// openErrDB registers and opens a test driver whose every call fails.
func openErrDB(t *testing.T) *sql.DB {
	t.Helper()

	testDriverOnce.Do(func() {
		sql.Register(testDriverName, &errDriver{})
	})
	db, err := sql.Open(testDriverName, "")
	if err != nil {
		t.Fatalf("sql.Open(%q) error = %v", testDriverName, err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestExecPropagatesError(t *testing.T) {
	t.Parallel()

	r := &Repository{db: openErrDB(t)}
	err := r.Exec(context.Background(), "SELECT 1")
	if err == nil || !strings.Contains(err.Error(), "exec failed") {
		t.Fatalf("Exec() error = %v, want exec failed", err)
	}
}

func TestQueryPropagatesError(t *testing.T) {
	t.Parallel()

	r := &Repository{db: openErrDB(t)}
	_, err := r.Query(context.Background(), "select * from tmp.employees_raw")
	if err == nil || !strings.Contains(err.Error(), "query failed") {
		t.Fatalf("Query() error = %v, want query failed", err)
	}
}

// TestCopyFromBeginTxError verifies that CopyFrom surfaces errors from
// db.BeginTx before any bulk-copy logic runs.
func TestCopyFromBeginTxError(t *testing.T) {
	t.Parallel()

	r := &Repository{db: openErrDB(t)}
	rows := [][]any{{1, "alice"}, {2, "bob"}}

	n, err := r.CopyFrom(context.Background(), storage.Destination{Namespace: "dbo", Table: "t"}, []string{"id", "name"}, rows)
	if err == nil {
		t.Fatalf("CopyFrom() error = nil, want non-nil when BeginTx fails")
	}
	if n != 0 {
		t.Fatalf("CopyFrom() rows = %d, want 0 on error", n)
	}
	if !strings.Contains(err.Error(), "begin tx:") {
		t.Fatalf("CopyFrom() error = %q, want it wrapped with 'begin tx:'", err.Error())
	}
}
