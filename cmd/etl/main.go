// Command etl runs the employee staging job once: it reads the raw batch,
// applies the name, email, salary and date rules, and writes the accepted
// and rejected rows to their destinations.
//
// Exit status is 0 on success or when the source is empty, and 1 when the
// configuration is invalid or a read or write fails.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hretl/internal/config"
	"hretl/internal/logger"
	"hretl/internal/metrics"
	"hretl/internal/metrics/datadog"
	"hretl/internal/metrics/prompush"
	"hretl/internal/pipeline"

	"github.com/google/uuid"

	// register every backend with the storage factory; the config picks one.
	_ "hretl/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := realMain(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	cfgPath        string
	envFile        string
	validateOnly   bool
	verbose        bool
	logFormat      string
	metricsBackend string
	pushGatewayURL string
	dogstatsdAddr  string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.cfgPath, "config", "configs/pipelines/employees.json", "pipeline config path (.json, .yaml or .yml)")
	fs.StringVar(&o.envFile, "env-file", ".env", "dotenv file loaded before the config; missing is fine")
	fs.BoolVar(&o.validateOnly, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&o.verbose, "v", false, "debug logs, including one line per rejected row")
	fs.StringVar(&o.logFormat, "log-format", "json", "log format: json or text")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: pushgateway, datadog or none (env METRICS_BACKEND)")
	fs.StringVar(&o.pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	fs.StringVar(&o.dogstatsdAddr, "dogstatsd-addr", "", "DogStatsD address (env DD_DOGSTATSD_ADDR)")
	err := fs.Parse(args)
	return o, err
}

// realMain runs the CLI and returns the process exit status.
func realMain(ctx context.Context, args []string, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	logger.SetOutput(stderr)
	if err := logger.SetFormat(o.logFormat); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if o.verbose {
		logger.SetLevel(slog.LevelDebug)
	}

	if o.envFile != "" {
		if err := config.LoadEnv(o.envFile == ".env", o.envFile); err != nil {
			logger.Error("config: load env", "file", o.envFile, "error", err)
			return 1
		}
	}

	p, err := config.Load(o.cfgPath)
	if err != nil {
		logger.Error("config: load", "path", o.cfgPath, "error", err)
		return 1
	}
	config.ApplyEnv(&p, nil)

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			logger.Error("config: invalid", "path", iss.Path, "message", iss.Message)
		} else {
			logger.Warn("config: suspicious", "path", iss.Path, "message", iss.Message)
		}
	}
	if config.HasErrors(issues) {
		logger.Error("config: configuration is invalid", "config", o.cfgPath)
		return 1
	}
	if o.validateOnly {
		logger.Info("config: configuration is valid", "config", o.cfgPath)
		return 0
	}

	runID := uuid.NewString()
	log := logger.WithRun(runID, p.Job)

	flush := setupMetrics(log, o, p.Job)
	defer flush()

	start := time.Now()
	rep, err := run(ctx, p, log, o.verbose)
	log.Info("etl: finished",
		"read", rep.Summary.Read,
		"accepted", rep.Summary.Accepted,
		"rejected", rep.Summary.Rejected,
		"accepted_written", rep.Load.Accepted.Written,
		"rejected_written", rep.Load.Rejected.Written,
		"elapsed", time.Since(start).Truncate(time.Millisecond).String(),
	)
	return exitCode(log, err)
}

// exitCode maps a run error to the process status. An empty source is a
// warning, not a failure.
func exitCode(log *slog.Logger, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pipeline.ErrEmptySource):
		log.Warn("etl: nothing to do, source is empty")
		return 0
	default:
		log.Error("etl: run failed", "error", err)
		return 1
	}
}

// setupMetrics installs the selected backend and returns a flush func to
// defer. Backend selection goes flag, then env, then none.
func setupMetrics(log *slog.Logger, o options, job string) func() {
	name := firstNonEmpty(o.metricsBackend, os.Getenv("METRICS_BACKEND"), "none")

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "pushgateway":
		url := firstNonEmpty(o.pushGatewayURL, os.Getenv("PUSHGATEWAY_URL"), "http://localhost:9091")
		b, err = prompush.NewBackend(job, url)
		log = log.With("url", url)
	case "datadog":
		addr := firstNonEmpty(o.dogstatsdAddr, os.Getenv("DD_DOGSTATSD_ADDR"), "127.0.0.1:8125")
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "hretl.",
			GlobalTags: []string{"job:" + job},
		})
		log = log.With("addr", addr)
	case "none":
		log.Debug("metrics: disabled")
		return func() {}
	default:
		log.Warn("metrics: unknown backend; metrics disabled", "backend", name)
		return func() {}
	}
	if err != nil {
		log.Warn("metrics: backend init failed; metrics disabled", "backend", name, "error", err)
		return func() {}
	}

	metrics.SetBackend(b)
	log.Info("metrics: enabled", "backend", name)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush failed", "backend", name, "error", err)
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
