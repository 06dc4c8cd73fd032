// Package config defines the configuration model for the employee ETL job.
//
// A pipeline file is JSON, or YAML when its name ends in .yaml or .yml. Keys
// left out of the file keep the values from Default, so the smallest useful
// file only names the storage DSN:
//
//	{
//	  "job":     "employees",
//	  "source":  { "kind": "store", "query": "select * from tmp.employees_raw" },
//	  "fields":  { "id": "id", "name": "name", "email": "email", "salary": "salary", "join_date": "join_date" },
//	  "storage": { "kind": "postgres", "db": { "dsn": "postgres://...", "auto_create_table": true } },
//	  "destinations": {
//	    "accepted": "tmp.employees_processed",
//	    "rejected": "tmp.employees_unprocessed"
//	  },
//	  "runtime": { "batch_size": 5000 }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `json:"job" yaml:"job"`

	Source       Source        `json:"source" yaml:"source"`
	Fields       Fields        `json:"fields" yaml:"fields"`
	Storage      Storage       `json:"storage" yaml:"storage"`
	Destinations Destinations  `json:"destinations" yaml:"destinations"`
	Runtime      RuntimeConfig `json:"runtime" yaml:"runtime"`
}

// Source identifies where the batch comes from.
type Source struct {
	// Kind is "store" (run Query against Storage), "file" or "http".
	Kind string `json:"kind" yaml:"kind"`

	// Query is the read-only SELECT used by the "store" kind.
	Query string `json:"query" yaml:"query"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file" yaml:"file"`

	// HTTP carries options for the "http" source kind.
	HTTP SourceHTTP `json:"http" yaml:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is a local JSON array of objects or a headed CSV file.
	Path string `json:"path" yaml:"path"`

	// Format is "json" or "csv". Empty picks by the file extension.
	Format string `json:"format" yaml:"format"`

	// Delimiter is the CSV field separator, one character. Empty means ",".
	Delimiter string `json:"delimiter" yaml:"delimiter"`
}

// SourceHTTP holds configuration for the "http" source kind: a GET of URL
// returning a JSON array of objects.
type SourceHTTP struct {
	URL            string `json:"url" yaml:"url"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int    `json:"max_retries" yaml:"max_retries"`
	// BearerTokenEnv names an environment variable holding a bearer token.
	BearerTokenEnv string `json:"bearer_token_env" yaml:"bearer_token_env"`
}

// Fields names the staging columns the rules read. Empty entries fall back
// to the default column names.
type Fields struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Salary   string `json:"salary" yaml:"salary"`
	JoinDate string `json:"join_date" yaml:"join_date"`
}

// Storage selects the database backend used for reads and writes.
type Storage struct {
	// Kind is one of "postgres", "mssql", "mysql", "sqlite".
	Kind string   `json:"kind" yaml:"kind"`
	DB   DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the database connection.
type DBConfig struct {
	// DSN is the backend connection string. It may be left empty and
	// supplied through the environment, see ApplyEnv.
	DSN string `json:"dsn" yaml:"dsn"`

	// AutoCreateTable creates missing destination tables from the columns
	// of the rows being written.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`
}

// Destinations names the tables receiving each set, as "namespace.table".
type Destinations struct {
	Accepted string `json:"accepted" yaml:"accepted"`
	Rejected string `json:"rejected" yaml:"rejected"`
}

// RuntimeConfig controls batching.
type RuntimeConfig struct {
	// BatchSize bounds the rows per bulk insert. Zero uses the default.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// Default returns the configuration of the staging job as originally
// deployed against Postgres.
func Default() Pipeline {
	return Pipeline{
		Job: "employees",
		Source: Source{
			Kind:  "store",
			Query: "select * from tmp.employees_raw",
		},
		Storage: Storage{Kind: "postgres"},
		Destinations: Destinations{
			Accepted: "tmp.employees_processed",
			Rejected: "tmp.employees_unprocessed",
		},
		Runtime: RuntimeConfig{BatchSize: 5000},
	}
}

// Load reads the pipeline file at path over Default. Unknown keys are an
// error in JSON and YAML alike.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	p, err := Decode(b, formatOf(path))
	if err != nil {
		return Pipeline{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return p, nil
}

// Decode parses b as "json" or "yaml" over Default.
func Decode(b []byte, format string) (Pipeline, error) {
	p := Default()
	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, err
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, err
		}
	default:
		return Pipeline{}, fmt.Errorf("unknown config format %q", format)
	}
	return p, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
