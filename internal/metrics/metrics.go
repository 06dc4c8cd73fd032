// Package metrics records operational metrics for the employee ETL job
// through a pluggable Backend.
//
// The global backend defaults to a no-op, so every helper is safe to call
// when no metrics system is configured. Concrete systems live in
// subpackages (prompush, datadog) and are installed with SetBackend.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by every backend.
const (
	StepTotal      = "etl_step_total"
	StepDuration   = "etl_step_duration_seconds"
	RecordsTotal   = "etl_records_total"
	LastRunSeconds = "etl_last_run_timestamp_seconds"
	RejectRatio    = "etl_reject_ratio"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration style observation.
	ObserveHistogram(name string, value float64, labels Labels)
	// SetGauge sets a point-in-time value.
	SetGauge(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) SetGauge(string, float64, Labels)         {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs b. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error { return current().Flush() }

// RecordStep counts one execution of step and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// StartStep starts timing step; call the returned func with the step's
// error when it finishes.
func StartStep(job, step string) func(error) {
	start := time.Now()
	return func(err error) { RecordStep(job, step, err, time.Since(start)) }
}

// RecordRows adds delta to the record counter for kind. Kinds used by the
// job: read, accepted, rejected, rejected_<stage>, inserted.
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordRun sets the last-run gauges once a run has transformed its batch.
// The reject ratio is zero when nothing was read.
func RecordRun(job string, read, rejected int, at time.Time) {
	b := current()
	b.SetGauge(LastRunSeconds, float64(at.Unix()), Labels{"job": job})
	ratio := 0.0
	if read > 0 {
		ratio = float64(rejected) / float64(read)
	}
	b.SetGauge(RejectRatio, ratio, Labels{"job": job})
}
