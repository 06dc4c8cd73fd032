// Package pipeline runs the employee validation batch: it reads a batch,
// narrows it through the field stages in a fixed order while recording why
// each dropped row was dropped, and writes the accepted and rejected sets to
// their destinations.
//
// A Pipeline is single-use and strictly sequential:
//
//	Created -> Read -> Transformed -> Loaded
//
// Calling a step out of order returns ErrOutOfOrder without side effects.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hretl/internal/logger"
	"hretl/internal/storage"
	"hretl/internal/transformer/builtin"
	"hretl/pkg/records"
)

var (
	// ErrEmptySource is returned by Read when the source yields no rows.
	ErrEmptySource = errors.New("pipeline: source yielded no rows")
	// ErrOutOfOrder is returned when a step is called in the wrong state.
	ErrOutOfOrder = errors.New("pipeline: step called out of order")
)

type state int

const (
	stateCreated state = iota
	stateRead
	stateTransformed
	stateLoaded
)

func (s state) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateRead:
		return "read"
	case stateTransformed:
		return "transformed"
	case stateLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Writer appends a batch to a destination. storage.RecordStore satisfies it.
type Writer interface {
	WriteAll(ctx context.Context, recs []records.Record, dest storage.Destination) (int64, error)
}

// Pipeline owns the working batch and its audit ledger for one run.
type Pipeline struct {
	stages   []Stage
	fields   Fields
	log      *slog.Logger
	onReject func(builtin.RejectedRow)

	state   state
	working []records.Record
	audit   ledger
	summary Summary
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStages replaces the default stages.
func WithStages(stages ...Stage) Option {
	return func(p *Pipeline) { p.stages = stages }
}

// WithFields sets the column names used by the default stages and for the
// business key.
func WithFields(f Fields) Option {
	return func(p *Pipeline) { p.fields = f.WithDefaults() }
}

// WithLogger sets the diagnostic sink. A nil logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithRejectSink registers fn to receive every row as it is rejected.
func WithRejectSink(fn func(builtin.RejectedRow)) Option {
	return func(p *Pipeline) { p.onReject = fn }
}

// New returns a Pipeline in the Created state.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		fields: DefaultFields(),
		log:    logger.Logger,
	}
	for _, o := range opts {
		o(p)
	}
	if p.stages == nil {
		p.stages = DefaultStages(p.fields, p.log)
	}
	return p
}

func (p *Pipeline) expect(want state, step string) error {
	if p.state != want {
		return fmt.Errorf("%w: %s requires state %s, have %s", ErrOutOfOrder, step, want, p.state)
	}
	return nil
}

// Read loads the batch from src and creates an empty-reason audit entry per
// record. It returns the number of rows read.
func (p *Pipeline) Read(ctx context.Context, src Source) (int, error) {
	if err := p.expect(stateCreated, "read"); err != nil {
		return 0, err
	}

	recs, err := src.Records(ctx)
	if err != nil {
		p.log.Error("pipeline: read failed", "source", src.String(), "error", err)
		return 0, fmt.Errorf("read %s: %w", src, err)
	}
	if len(recs) == 0 {
		p.log.Warn("pipeline: source is empty", "source", src.String())
		return 0, ErrEmptySource
	}

	p.warnDuplicateIDs(recs)

	p.audit = newLedger(recs)
	p.working = make([]records.Record, len(recs))
	for i, r := range recs {
		w := r.Clone()
		w[rowKey] = i
		p.working[i] = w
	}
	p.summary = Summary{Read: len(recs)}
	p.state = stateRead

	p.log.Info("pipeline: read", "source", src.String(), "rows", len(recs))
	return len(recs), nil
}

func (p *Pipeline) warnDuplicateIDs(recs []records.Record) {
	seen := make(map[string]int, len(recs))
	dups := 0
	for _, r := range recs {
		v, ok := r[p.fields.ID]
		if !ok || v == nil {
			continue
		}
		k := fmt.Sprint(v)
		seen[k]++
		if seen[k] == 2 {
			dups++
		}
	}
	if dups > 0 {
		p.log.Warn("pipeline: duplicate ids in source batch", "field", p.fields.ID, "duplicated_ids", dups)
	}
}

// Transform runs every stage in order. After each stage, rows that went in
// and did not come out receive the stage's reason unless they already have
// one.
func (p *Pipeline) Transform() (Summary, error) {
	if err := p.expect(stateRead, "transform"); err != nil {
		return Summary{}, err
	}

	for _, st := range p.stages {
		p.summary.Stages = append(p.summary.Stages, p.runStage(st))
	}

	p.summary.Accepted = len(p.working)
	p.summary.Rejected = p.summary.Read - p.summary.Accepted
	p.state = stateTransformed

	p.log.Info("pipeline: transformed",
		"read", p.summary.Read,
		"accepted", p.summary.Accepted,
		"rejected", p.summary.Rejected,
	)
	return p.summary, nil
}

func (p *Pipeline) runStage(st Stage) StageResult {
	before := make([]int, 0, len(p.working))
	for _, r := range p.working {
		if h, ok := rowOf(r); ok {
			before = append(before, h)
		}
	}

	p.working = st.Transformer.Apply(p.working)

	kept := make(map[int]struct{}, len(p.working))
	for _, r := range p.working {
		if h, ok := rowOf(r); ok {
			kept[h] = struct{}{}
		}
	}

	res := StageResult{Name: st.Name, Reason: st.Reason, In: len(before), Out: len(p.working)}
	for _, h := range before {
		if _, ok := kept[h]; ok {
			continue
		}
		e, ok := p.audit.entry(h)
		if !ok || !e.reject(st.Reason) {
			continue
		}
		res.Rejected++
		if p.onReject != nil {
			p.onReject(builtin.RejectedRow{
				Row:    h,
				ID:     e.Original[p.fields.ID],
				Raw:    e.Original,
				Reason: st.Reason,
				Stage:  st.Name,
			})
		}
	}

	p.log.Debug("pipeline: stage done",
		"stage", st.Name,
		"in", res.In,
		"out", res.Out,
		"rejected", res.Rejected,
	)
	return res
}

// Accepted returns the rows that survived every stage, with normalized
// salary and date values.
func (p *Pipeline) Accepted() ([]records.Record, error) {
	if p.state < stateTransformed {
		return nil, fmt.Errorf("%w: accepted requires state %s, have %s", ErrOutOfOrder, stateTransformed, p.state)
	}
	out := make([]records.Record, len(p.working))
	for i, r := range p.working {
		out[i] = r.Without(rowKey)
	}
	return out, nil
}

// Rejected returns the original field values of every rejected row plus a
// "reason" column, in read order.
func (p *Pipeline) Rejected() ([]records.Record, error) {
	if p.state < stateTransformed {
		return nil, fmt.Errorf("%w: rejected requires state %s, have %s", ErrOutOfOrder, stateTransformed, p.state)
	}
	return p.audit.rejected(), nil
}

// Summary returns the counts gathered so far.
func (p *Pipeline) Summary() Summary { return p.summary }

// Load writes Accepted to accepted and Rejected to rejected through w. The
// writes are independent: a failure of one is recorded in its WriteResult and
// does not prevent the other. Nothing is retried. The returned error is only
// set for out-of-order calls; inspect LoadResult for write failures.
func (p *Pipeline) Load(ctx context.Context, w Writer, accepted, rejected storage.Destination) (LoadResult, error) {
	if err := p.expect(stateTransformed, "load"); err != nil {
		return LoadResult{}, err
	}
	acc, _ := p.Accepted()
	rej, _ := p.Rejected()

	res := LoadResult{
		Accepted: p.write(ctx, w, "accepted", acc, accepted),
		Rejected: p.write(ctx, w, "rejected", rej, rejected),
	}
	p.state = stateLoaded
	return res, nil
}

func (p *Pipeline) write(ctx context.Context, w Writer, kind string, recs []records.Record, dest storage.Destination) WriteResult {
	res := WriteResult{Destination: dest, Rows: len(recs)}
	if len(recs) == 0 {
		res.Skipped = true
		p.log.Info("pipeline: nothing to write", "set", kind, "destination", dest.String())
		return res
	}
	n, err := w.WriteAll(ctx, recs, dest)
	res.Written = n
	if err != nil {
		res.Err = fmt.Errorf("write %s rows to %s: %w", kind, dest, err)
		p.log.Error("pipeline: write failed", "set", kind, "destination", dest.String(), "rows", len(recs), "error", err)
		return res
	}
	p.log.Info("pipeline: written", "set", kind, "destination", dest.String(), "rows", n)
	return res
}
