package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "employees.json")
	if err := os.WriteFile(present, []byte(`[{"id": 1}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name      string
		path      string
		ctx       context.Context
		wantErrIs error
		want      string
	}{
		{name: "reads content", path: present, ctx: context.Background(), want: `[{"id": 1}]`},
		{name: "missing file", path: filepath.Join(dir, "missing.json"), ctx: context.Background(), wantErrIs: os.ErrNotExist},
		{name: "canceled context", path: present, ctx: canceled, wantErrIs: context.Canceled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rc, err := NewLocal(tc.path).Open(tc.ctx)
			if tc.wantErrIs != nil {
				if !errors.Is(err, tc.wantErrIs) {
					t.Fatalf("Open err = %v, want %v", err, tc.wantErrIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()
			b, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(b) != tc.want {
				t.Fatalf("content = %q, want %q", b, tc.want)
			}
		})
	}
}

func TestRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "employees.json")
	if err := os.WriteFile(jsonPath, []byte(`[{"Employee ID": 3, "Name": "Bob"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	csvPath := filepath.Join(dir, "employees.CSV")
	if err := os.WriteFile(csvPath, []byte("Employee ID;Name\n3; Bob \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	src, err := Records(jsonPath, "", 0)
	if err != nil {
		t.Fatalf("Records(json): %v", err)
	}
	recs, err := src.Records(context.Background())
	if err != nil {
		t.Fatalf("json Records: %v", err)
	}
	if len(recs) != 1 || recs[0]["employee_id"] != int64(3) || recs[0]["name"] != "Bob" {
		t.Fatalf("json Records = %v", recs)
	}
	if src.String() != "file "+jsonPath {
		t.Fatalf("String = %q", src.String())
	}

	src, err = Records(csvPath, "", ';')
	if err != nil {
		t.Fatalf("Records(csv): %v", err)
	}
	recs, err = src.Records(context.Background())
	if err != nil {
		t.Fatalf("csv Records: %v", err)
	}
	if len(recs) != 1 || recs[0]["employee_id"] != "3" || recs[0]["name"] != "Bob" {
		t.Fatalf("csv Records = %v", recs)
	}

	if _, err := Records(jsonPath, "xml", 0); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	cases := []struct{ path, format, want string }{
		{"a.json", "", "json"},
		{"a.csv", "", "csv"},
		{"a.txt", "", "json"},
		{"a.txt", "CSV", "csv"},
	}
	for _, tc := range cases {
		if got := Format(tc.path, tc.format); got != tc.want {
			t.Errorf("Format(%q, %q) = %q, want %q", tc.path, tc.format, got, tc.want)
		}
	}
}
