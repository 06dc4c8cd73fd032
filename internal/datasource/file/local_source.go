// Package file opens sources from the local filesystem.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"hretl/internal/datasource"
	pcsv "hretl/internal/parser/csv"
)

// Local opens one file from local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open returns the file for reading. A context that is already done is
// reported without touching the filesystem. Errors keep os.ErrNotExist and
// friends reachable through errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

func (l *Local) String() string { return "file " + l.path }

// Format picks the decoder for path: format when set, otherwise ".csv"
// files are CSV and everything else JSON.
func Format(path, format string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "json"
}

// Records returns a record source for path. CSV input must have a header
// row; comma is its delimiter (zero means ',').
func Records(path, format string, comma rune) (datasource.RecordSource, error) {
	l := NewLocal(path)
	switch f := Format(path, format); f {
	case "json":
		return datasource.JSON(l, l.String()), nil
	case "csv":
		p := pcsv.NewParser(pcsv.Options{Comma: comma, TrimSpace: true})
		return datasource.RecordSource{Src: l, Name: l.String(), Decode: p.Decode}, nil
	default:
		return datasource.RecordSource{}, fmt.Errorf("file: unknown format %q", f)
	}
}
