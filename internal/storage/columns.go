package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"hretl/pkg/records"
)

// Kind is the storage-neutral type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// Column is one destination column.
type Column struct {
	Name string
	Kind Kind
}

// Names returns the column names in order.
func Names(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// InferColumns derives the column set of recs: the union of keys (lead keys
// first, then sorted) typed by their non-nil values. Int mixed with float
// widens to float; any other mix is text, as is a column that is always nil.
func InferColumns(recs []records.Record, lead ...string) []Column {
	names := records.Columns(recs, lead...)
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Kind: inferKind(recs, n)}
	}
	return cols
}

func inferKind(recs []records.Record, name string) Kind {
	var (
		kind Kind
		seen bool
	)
	for _, r := range recs {
		v, ok := r[name]
		if !ok || v == nil {
			continue
		}
		k := kindOf(v)
		switch {
		case !seen:
			kind, seen = k, true
		case kind == k:
		case (kind == KindInt && k == KindFloat) || (kind == KindFloat && k == KindInt):
			kind = KindFloat
		default:
			return KindText
		}
	}
	return kind
}

func kindOf(v any) Kind {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return KindInt
	case float32, float64:
		return KindFloat
	case bool:
		return KindBool
	case time.Time:
		return KindTimestamp
	default:
		return KindText
	}
}

// ToRows aligns recs to cols. Missing keys become nil. Values of text
// columns are rendered as strings; maps and slices as JSON.
func ToRows(recs []records.Record, cols []Column) ([][]any, error) {
	rows := make([][]any, len(recs))
	for i, r := range recs {
		row := make([]any, len(cols))
		for j, c := range cols {
			v, err := cellValue(r[c.Name], c.Kind)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, c.Name, err)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}

func cellValue(v any, k Kind) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case records.Record:
		b, err := json.Marshal(map[string]any(t))
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	if k != KindText {
		return v, nil
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case time.Time:
		return t.Format(time.RFC3339), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return fmt.Sprint(t), nil
	}
}
