// Package csv parses a headed CSV export into records.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"hretl/internal/datasource"
	"hretl/internal/logger"
	"hretl/pkg/records"
)

// Options configures the parser. The zero value reads comma-separated input
// and keeps values as written.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// TrimSpace trims surrounding whitespace from each value.
	TrimSpace bool

	// HeaderMap maps raw header names to field names. Unmapped headers go
	// through datasource.FieldName.
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. It is not safe for
// concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with opt.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

const utf8BOM = "\uFEFF"

// skipLogLimit caps the per-row warnings for one input.
const skipLogLimit = 100

// Parse reads the header row and every body row from r. Rows that fail to
// parse or have the wrong number of fields are skipped and counted. Empty
// cells become nil so they read as missing to the rules.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers, err := p.headers(h)
	if err != nil {
		return nil, 0, err
	}

	var out []records.Record
	skipped := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil && len(row) != len(headers) {
			err = fmt.Errorf("expected %d fields, got %d", len(headers), len(row))
		}
		if err != nil {
			if skipped < skipLogLimit {
				logger.Warn("csv: skipping row", "line", line, "error", err)
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		out = append(out, rec)
	}
	if skipped > 0 {
		logger.Warn("csv: rows skipped", "skipped", skipped, "parsed", len(out))
	}
	return out, skipped, nil
}

// Decode parses r and discards the skip count. It fits datasource.Decoder.
func (p *Parser) Decode(r io.Reader) ([]records.Record, error) {
	recs, _, err := p.Parse(r)
	return recs, err
}

func (p *Parser) headers(h []string) ([]string, error) {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		name, ok := p.opt.HeaderMap[c]
		if !ok {
			name = datasource.FieldName(c)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("csv header: columns %d and %d both map to %q", prev+1, i+1, name)
		}
		seen[name] = i
		res[i] = name
	}
	return res, nil
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
