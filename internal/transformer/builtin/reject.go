package builtin

import "hretl/pkg/records"

// RejectedRow describes one record dropped by a pipeline stage. Raw holds the
// record as it was read, before any stage rewrote it.
type RejectedRow struct {
	Row    int
	ID     any
	Raw    records.Record
	Reason string
	Stage  string
}
