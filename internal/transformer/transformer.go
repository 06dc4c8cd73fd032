// Package transformer defines the batch transformation contract shared by the
// validation stages. A Transformer receives the current batch and returns the
// records that survive it, possibly rewritten in place.
package transformer

import "hretl/pkg/records"

type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Func adapts a plain function to Transformer.
type Func func([]records.Record) []records.Record

func (f Func) Apply(in []records.Record) []records.Record { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// Filter returns the records for which keep reports true, preserving order.
// The input slice is not modified.
func Filter(in []records.Record, keep func(records.Record) bool) []records.Record {
	if in == nil {
		return nil
	}
	out := make([]records.Record, 0, len(in))
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
