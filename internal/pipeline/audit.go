package pipeline

import "hretl/pkg/records"

// rowKey is the hidden column carrying a record's row handle through the
// stages. It is assigned at Read and stripped from everything returned.
const rowKey = "__row"

// ReasonField is the column added to rejected records.
const ReasonField = "reason"

// AuditEntry shadows one input record. Original is never modified; Reason is
// set at most once, by the first stage that drops the row.
type AuditEntry struct {
	Row      int
	Original records.Record
	Reason   string
}

// reject sets the reason if none is set yet and reports whether it did.
func (e *AuditEntry) reject(reason string) bool {
	if e.Reason != "" {
		return false
	}
	e.Reason = reason
	return true
}

// ledger maps row handles to audit entries. Handles are dense ordinals, so a
// slice indexed by handle is the map.
type ledger []*AuditEntry

func newLedger(recs []records.Record) ledger {
	l := make(ledger, len(recs))
	for i, r := range recs {
		l[i] = &AuditEntry{Row: i, Original: r.Clone()}
	}
	return l
}

func (l ledger) entry(row int) (*AuditEntry, bool) {
	if row < 0 || row >= len(l) {
		return nil, false
	}
	return l[row], true
}

// rejected returns the original records of every rejected entry, in read
// order, with the reason column added.
func (l ledger) rejected() []records.Record {
	out := make([]records.Record, 0)
	for _, e := range l {
		if e.Reason == "" {
			continue
		}
		r := e.Original.Clone()
		r[ReasonField] = e.Reason
		out = append(out, r)
	}
	return out
}

func rowOf(r records.Record) (int, bool) {
	h, ok := r[rowKey].(int)
	return h, ok
}
