// Package builtin contains the field rules applied by the employee pipeline.
package builtin

import (
	"hretl/internal/transformer"
	"hretl/pkg/records"
)

// Require removes any record missing a value for one of the specified fields.
// A value is missing when the key is absent, nil, or an empty string or byte
// slice (whitespace is not trimmed).
type Require struct {
	Fields []string
}

// Apply returns a new slice containing only records that have all required
// fields present and non-empty.
func (r Require) Apply(in []records.Record) []records.Record {
	return transformer.Filter(in, func(rec records.Record) bool {
		for _, f := range r.Fields {
			v, exists := rec[f]
			if !exists || v == nil {
				return false
			}
			if s, ok := stringValue(v); ok && s == "" {
				return false
			}
		}
		return true
	})
}
