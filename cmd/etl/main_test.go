package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hretl/internal/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func callMain(t *testing.T, args ...string) (int, string) {
	t.Helper()
	t.Setenv("ETL_DSN", "")
	t.Setenv("DATABASE", "")
	var stderr bytes.Buffer
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
	code := realMain(context.Background(), append([]string{"-env-file", "", "-metrics-backend", "none", "-log-format", "text"}, args...), &stderr)
	return code, stderr.String()
}

const validConfig = `{"storage": {"kind": "postgres", "db": {"dsn": "postgres://etl@localhost/hr"}}}`

func TestRealMain_Validate(t *testing.T) {
	code, out := callMain(t, "-validate", "-config", writeConfig(t, validConfig))
	require.Equal(t, 0, code, out)
	require.Contains(t, out, "configuration is valid")
}

func TestRealMain_InvalidConfig(t *testing.T) {
	code, out := callMain(t, "-validate", "-config", writeConfig(t, `{"storage": {"kind": "postgres"}}`))
	require.Equal(t, 1, code)
	require.Contains(t, out, "storage.db.dsn")
}

func TestRealMain_MissingConfig(t *testing.T) {
	code, out := callMain(t, "-config", filepath.Join(t.TempDir(), "nope.json"))
	require.Equal(t, 1, code)
	require.Contains(t, out, "read config")
}

func TestRealMain_BadFlags(t *testing.T) {
	code, _ := callMain(t, "-log-format", "xml")
	require.Equal(t, 2, code)

	code, _ = callMain(t, "-no-such-flag")
	require.Equal(t, 2, code)
}

func TestRealMain_MissingEnvFile(t *testing.T) {
	code, out := callMain(t, "-env-file", filepath.Join(t.TempDir(), "prod.env"), "-config", writeConfig(t, validConfig))
	require.Equal(t, 1, code)
	require.Contains(t, out, "load env")
}

func TestRealMain_RunsJob(t *testing.T) {
	st := &fakeStore{rows: staging()}
	useStore(t, st)

	code, out := callMain(t, "-config", writeConfig(t, validConfig))
	require.Equal(t, 0, code, out)
	require.Contains(t, out, "etl: finished")
	require.Contains(t, out, "run_id=")
	require.Len(t, st.written["tmp.employees_processed"], 1)
	require.Len(t, st.written["tmp.employees_unprocessed"], 4)
}

func TestRealMain_EmptySourceExitsZero(t *testing.T) {
	useStore(t, &fakeStore{})

	code, out := callMain(t, "-config", writeConfig(t, validConfig))
	require.Equal(t, 0, code)
	require.Contains(t, out, "source is empty")
}

func TestRealMain_WriteFailureExitsOne(t *testing.T) {
	useStore(t, &fakeStore{
		rows:     staging(),
		writeErr: map[string]error{"tmp.employees_unprocessed": os.ErrPermission},
	})

	code, out := callMain(t, "-config", writeConfig(t, validConfig))
	require.Equal(t, 1, code)
	require.Contains(t, out, "run failed")
}
