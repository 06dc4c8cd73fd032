// Package records defines the generic row type passed between ETL stages.
package records

import "sort"

// Record is one row keyed by column name. Values keep whatever type the
// source produced (string, int64, float64, time.Time, nil, ...).
type Record map[string]any

// Clone returns a shallow copy of r. Values are shared; the map is not.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Without returns a copy of r with the given keys removed.
func (r Record) Without(keys ...string) Record {
	out := r.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Columns returns the union of keys across recs. Keys listed in lead come
// first (in the given order, only if present); the rest are sorted.
func Columns(recs []Record, lead ...string) []string {
	seen := make(map[string]struct{})
	for _, r := range recs {
		for k := range r {
			seen[k] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for _, k := range lead {
		if _, ok := seen[k]; ok {
			out = append(out, k)
			delete(seen, k)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(out, rest...)
}
