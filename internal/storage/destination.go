package storage

import "strings"

// Destination names a table, optionally inside a namespace (schema).
type Destination struct {
	Namespace string
	Table     string
}

// ParseDestination splits "schema.table" at the first dot. A name without a
// dot has an empty namespace.
func ParseDestination(s string) Destination {
	s = strings.TrimSpace(s)
	if ns, tbl, ok := strings.Cut(s, "."); ok {
		return Destination{Namespace: ns, Table: tbl}
	}
	return Destination{Table: s}
}

// String renders "namespace.table", or just the table without a namespace.
func (d Destination) String() string {
	if d.Namespace == "" {
		return d.Table
	}
	return d.Namespace + "." + d.Table
}

// IsZero reports whether no table is named.
func (d Destination) IsZero() bool { return d.Table == "" }
