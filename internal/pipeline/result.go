package pipeline

import (
	"errors"

	"hretl/internal/storage"
)

// StageResult counts what one stage did.
type StageResult struct {
	Name     string
	Reason   string
	In       int
	Out      int
	Rejected int
}

// Summary counts a run. Read == Accepted + Rejected once transformed.
type Summary struct {
	Read     int
	Accepted int
	Rejected int
	Stages   []StageResult
}

// WriteResult reports the write of one set.
type WriteResult struct {
	Destination storage.Destination
	Rows        int
	Written     int64
	Skipped     bool
	Err         error
}

// LoadResult reports both writes of a Load.
type LoadResult struct {
	Accepted WriteResult
	Rejected WriteResult
}

// OK reports whether both writes succeeded or were skipped.
func (r LoadResult) OK() bool { return r.Accepted.Err == nil && r.Rejected.Err == nil }

// Err joins the write errors, or returns nil.
func (r LoadResult) Err() error { return errors.Join(r.Accepted.Err, r.Rejected.Err) }
