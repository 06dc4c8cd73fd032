// DeDup collapses duplicate records by a configured key and chooses a winner
// according to a policy:
//
//   - "keep-first"   : keep the earliest occurrence in the batch
//   - "keep-last"    : keep the latest occurrence in the batch (default)
//   - "most-complete": keep the record that has the most non-empty fields;
//     ties break by "keep-last"
//
// This runs in-memory on a single batch. It never consults stored rows: the
// destination tables are appended to as-is.
//
// Keys: a record's key is the concatenation of the configured fields as
// strings (nil -> "\x00"), hashed with xxh3 for bucketing. Records missing a
// key field pass through untouched.

package builtin

import (
	"strings"

	"github.com/zeebo/xxh3"

	"hretl/pkg/records"
)

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the field names that form the business key, e.g. ["email"].
	Keys []string

	// Policy selects the winner among duplicates: "keep-first", "keep-last",
	// or "most-complete" (default is "keep-last").
	Policy string
}

type dedupSlot struct {
	key   string
	index int // position in input
	score int // completeness score (most-complete only)
}

// Apply returns a new slice holding the winning record of each key plus all
// unkeyed records, in input order.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	var (
		slots   []dedupSlot
		buckets = make(map[uint64][]int, len(in)) // hash -> slot indexes
		keyed   = make([]bool, len(in))
	)

	lookup := func(key string) (int, uint64) {
		h := xxh3.HashString(key)
		for _, si := range buckets[h] {
			if slots[si].key == key {
				return si, h
			}
		}
		return -1, h
	}

	for i, r := range in {
		key, ok := d.keyOf(r)
		if !ok {
			continue
		}
		keyed[i] = true
		cand := dedupSlot{key: key, index: i}
		if policy == "most-complete" {
			cand.score = completeness(r)
		}

		si, h := lookup(key)
		if si < 0 {
			buckets[h] = append(buckets[h], len(slots))
			slots = append(slots, cand)
			continue
		}
		switch policy {
		case "keep-first":
			// earliest already holds the slot
		case "most-complete":
			if cand.score >= slots[si].score {
				slots[si] = cand
			}
		default: // keep-last
			slots[si] = cand
		}
	}

	win := make([]bool, len(in))
	for _, s := range slots {
		win[s.index] = true
	}
	out := make([]records.Record, 0, len(slots))
	for i, r := range in {
		if !keyed[i] || win[i] {
			out = append(out, r)
		}
	}
	return out
}

func (d DeDup) keyOf(r records.Record) (string, bool) {
	var b strings.Builder
	for i, k := range d.Keys {
		v, ok := r[k]
		if !ok {
			return "", false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		if v == nil {
			b.WriteByte('\x00')
			continue
		}
		b.WriteString(asString(v))
	}
	return b.String(), true
}

// completeness counts non-nil, non-empty values.
func completeness(r records.Record) int {
	n := 0
	for _, v := range r {
		if v == nil || v == "" {
			continue
		}
		n++
	}
	return n
}
