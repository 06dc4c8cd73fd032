package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"hretl/pkg/records"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Decoder turns an opened stream into records.
type Decoder func(io.Reader) ([]records.Record, error)

// RecordSource opens Src and decodes it with Decode. It satisfies
// pipeline.Source.
type RecordSource struct {
	Src    Source
	Name   string
	Decode Decoder
}

// JSON returns a RecordSource decoding a JSON array of objects.
func JSON(src Source, name string) RecordSource {
	return RecordSource{Src: src, Name: name, Decode: DecodeJSON}
}

// Records opens Src and decodes all of it.
func (s RecordSource) Records(ctx context.Context) ([]records.Record, error) {
	rc, err := s.Src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	recs, err := s.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Name, err)
	}
	return recs, nil
}

func (s RecordSource) String() string { return s.Name }

// DecodeJSON decodes a JSON array of objects. Top-level keys are passed
// through FieldName. Integral numbers become int64, other numbers float64.
// A null or empty document yields no records.
func DecodeJSON(r io.Reader) ([]records.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON array")
	}

	out := make([]records.Record, 0, len(raw))
	for i, obj := range raw {
		rec := make(records.Record, len(obj))
		for k, v := range obj {
			name := FieldName(k)
			if _, dup := rec[name]; dup {
				return nil, fmt.Errorf("object %d: more than one key maps to field %q", i, name)
			}
			rec[name] = numbers(v)
		}
		out = append(out, rec)
	}
	return out, nil
}

func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = numbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = numbers(e)
		}
		return t
	default:
		return v
	}
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FieldName canonicalizes a source column name: lowercased, accents
// stripped, runs of space, dash, dot and underscore folded to one "_", any
// other character dropped. An empty result becomes "col".
func FieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	ascii, _, err := transform.String(stripMarks, s)
	if err != nil {
		ascii = s
	}

	var b bytes.Buffer
	under := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			under = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !under {
				b.WriteByte('_')
				under = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}
