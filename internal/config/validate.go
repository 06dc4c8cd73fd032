package config

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"hretl/internal/storage"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Pipeline.
//
// Path is a dotted path into the config, e.g. "storage.db.dsn".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static checks over p and returns every finding.
// It does not mutate p. Callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateFields(p.Fields)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateDestinations(p.Destinations)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	switch strings.TrimSpace(s.Kind) {
	case "":
		issues = append(issues, Issue{SeverityError, "source.kind", "source.kind must not be empty"})
	case "store":
		q := strings.TrimSpace(s.Query)
		if q == "" {
			issues = append(issues, Issue{SeverityError, "source.query", "store source requires a query"})
			break
		}
		if first := strings.ToLower(strings.Fields(q)[0]); first != "select" && first != "with" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "source.query",
				Message:  fmt.Sprintf("query starts with %q; the source is expected to be a read-only SELECT", first),
			})
		}
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{SeverityError, "source.file.path", "file source requires a non-empty path"})
		}
		switch strings.ToLower(s.File.Format) {
		case "", "json", "csv":
		default:
			issues = append(issues, Issue{SeverityError, "source.file.format", fmt.Sprintf("unknown file format %q; want json or csv", s.File.Format)})
		}
		if utf8.RuneCountInString(s.File.Delimiter) > 1 {
			issues = append(issues, Issue{SeverityError, "source.file.delimiter", "delimiter must be a single character"})
		}
	case "http":
		u, err := url.Parse(strings.TrimSpace(s.HTTP.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, Issue{SeverityError, "source.http.url", "http source requires an absolute http(s) url"})
		}
		if s.HTTP.MaxRetries < 0 || s.HTTP.TimeoutSeconds < 0 {
			issues = append(issues, Issue{SeverityError, "source.http", "timeout_seconds and max_retries must not be negative"})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; want store, file or http", s.Kind),
		})
	}
	return issues
}

func validateFields(f Fields) []Issue {
	var issues []Issue
	seen := make(map[string]string, 5)
	for _, kv := range [][2]string{
		{"id", f.ID},
		{"name", f.Name},
		{"email", f.Email},
		{"salary", f.Salary},
		{"join_date", f.JoinDate},
	} {
		col := strings.TrimSpace(kv[1])
		if col == "" {
			continue
		}
		if prev, ok := seen[col]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "fields." + kv[0],
				Message:  fmt.Sprintf("column %q is already used by fields.%s", col, prev),
			})
			continue
		}
		seen[col] = kv[0]
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{SeverityError, "storage.kind", "storage.kind must not be empty"})
		return issues
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty; set it in the file, ETL_DSN, or DATABASE/USER/HOST/PASSWORD/PORT",
		})
	}
	return issues
}

func validateDestinations(d Destinations) []Issue {
	var issues []Issue
	acc := storage.ParseDestination(d.Accepted)
	if acc.IsZero() {
		issues = append(issues, Issue{SeverityError, "destinations.accepted", "accepted destination must name a table"})
	}
	rej := storage.ParseDestination(d.Rejected)
	if rej.IsZero() {
		issues = append(issues, Issue{SeverityError, "destinations.rejected", "rejected destination must name a table"})
	}
	if !acc.IsZero() && acc == rej {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "destinations.rejected",
			Message:  fmt.Sprintf("accepted and rejected rows both target %s", acc),
		})
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue
	if r.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	return issues
}
