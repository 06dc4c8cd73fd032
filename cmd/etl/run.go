package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"hretl/internal/config"
	"hretl/internal/datasource/file"
	"hretl/internal/datasource/httpds"
	"hretl/internal/metrics"
	"hretl/internal/pipeline"
	"hretl/internal/storage"
	"hretl/internal/transformer/builtin"
	"hretl/pkg/records"
)

// store is what a run needs from storage.
type store interface {
	pipeline.Reader
	pipeline.Writer
}

// newStoreFn is a test seam; production runs use a RecordStore.
var newStoreFn = func(p config.Pipeline, log *slog.Logger) store {
	f := fieldsOf(p)
	return &storage.RecordStore{
		Config:     storage.Config{Kind: p.Storage.Kind, DSN: p.Storage.DB.DSN},
		AutoCreate: p.Storage.DB.AutoCreateTable,
		BatchSize:  p.Runtime.BatchSize,
		Lead:       []string{f.ID, f.Name, f.Email, f.Salary, f.JoinDate, pipeline.ReasonField},
		Log:        log,
	}
}

// report is what a run hands back to main for the final log line.
type report struct {
	Summary pipeline.Summary
	Load    pipeline.LoadResult
}

func fieldsOf(p config.Pipeline) pipeline.Fields {
	return pipeline.Fields{
		ID:       p.Fields.ID,
		Name:     p.Fields.Name,
		Email:    p.Fields.Email,
		Salary:   p.Fields.Salary,
		JoinDate: p.Fields.JoinDate,
	}.WithDefaults()
}

// buildSource picks the batch source named by the config.
func buildSource(p config.Pipeline, st pipeline.Reader) (pipeline.Source, error) {
	switch p.Source.Kind {
	case "store":
		return pipeline.FromQuery(st, p.Source.Query), nil
	case "file":
		comma, _ := utf8.DecodeRuneInString(p.Source.File.Delimiter)
		if comma == utf8.RuneError {
			comma = 0
		}
		src, err := file.Records(p.Source.File.Path, p.Source.File.Format, comma)
		if err != nil {
			return nil, err
		}
		return src, nil
	case "http":
		cfg := httpds.Config{
			Timeout:    time.Duration(p.Source.HTTP.TimeoutSeconds) * time.Second,
			MaxRetries: p.Source.HTTP.MaxRetries,
		}
		if env := p.Source.HTTP.BearerTokenEnv; env != "" {
			tok := os.Getenv(env)
			if tok == "" {
				return nil, fmt.Errorf("source: %s is empty", env)
			}
			cfg.BaseHeaders = http.Header{"Authorization": {"Bearer " + tok}}
		}
		return httpds.JSON(httpds.NewClient(cfg), p.Source.HTTP.URL), nil
	default:
		return nil, fmt.Errorf("source: unknown kind %q", p.Source.Kind)
	}
}

// run executes one batch: read, transform, then write both sets. The error
// is the read failure, ErrEmptySource, or the joined write failures.
func run(ctx context.Context, p config.Pipeline, log *slog.Logger, verbose bool) (report, error) {
	var rep report

	st := newStoreFn(p, log)
	src, err := buildSource(p, st)
	if err != nil {
		return rep, err
	}

	opts := []pipeline.Option{
		pipeline.WithFields(fieldsOf(p)),
		pipeline.WithLogger(log),
		pipeline.WithRejectSink(func(r builtin.RejectedRow) {
			metrics.RecordRows(p.Job, "rejected_"+r.Stage, 1)
			if verbose {
				log.Debug("pipeline: row rejected", "row", r.Row, "id", r.ID, "stage", r.Stage, "reason", r.Reason)
			}
		}),
	}
	pl := pipeline.New(opts...)

	done := metrics.StartStep(p.Job, "extract")
	t0 := time.Now()
	n, err := pl.Read(ctx, src)
	if errors.Is(err, pipeline.ErrEmptySource) {
		done(nil)
		return rep, err
	}
	done(err)
	if err != nil {
		return rep, err
	}
	metrics.RecordRows(p.Job, "read", int64(n))
	log.Info("etl: step done", "step", "extract", "rows", n, "elapsed", time.Since(t0).String())

	done = metrics.StartStep(p.Job, "transform")
	t0 = time.Now()
	sum, err := pl.Transform()
	done(err)
	if err != nil {
		return rep, err
	}
	rep.Summary = sum
	metrics.RecordRows(p.Job, "accepted", int64(sum.Accepted))
	metrics.RecordRows(p.Job, "rejected", int64(sum.Rejected))
	metrics.RecordRun(p.Job, sum.Read, sum.Rejected, time.Now())
	log.Info("etl: step done", "step", "transform", "accepted", sum.Accepted, "rejected", sum.Rejected, "elapsed", time.Since(t0).String())

	accepted := storage.ParseDestination(p.Destinations.Accepted)
	rejected := storage.ParseDestination(p.Destinations.Rejected)
	w := &timedWriter{
		w:   st,
		job: p.Job,
		log: log,
		steps: map[storage.Destination]string{
			accepted: "load_accepted",
			rejected: "load_rejected",
		},
	}
	res, err := pl.Load(ctx, w, accepted, rejected)
	if err != nil {
		return rep, err
	}
	rep.Load = res
	metrics.RecordRows(p.Job, "inserted", res.Accepted.Written+res.Rejected.Written)
	return rep, res.Err()
}

// timedWriter records a metrics step and a log line per destination write.
type timedWriter struct {
	w     pipeline.Writer
	job   string
	log   *slog.Logger
	steps map[storage.Destination]string
}

func (t *timedWriter) WriteAll(ctx context.Context, recs []records.Record, dest storage.Destination) (int64, error) {
	step := t.steps[dest]
	if step == "" {
		step = "load"
	}
	start := time.Now()
	n, err := t.w.WriteAll(ctx, recs, dest)
	metrics.RecordStep(t.job, step, err, time.Since(start))
	if err == nil {
		t.log.Info("etl: step done", "step", step, "destination", dest.String(), "rows", n, "elapsed", time.Since(start).String())
	}
	return n, err
}
