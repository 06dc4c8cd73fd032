package builtin

import (
	"regexp"

	"hretl/internal/transformer"
	"hretl/pkg/records"
)

// EmailPattern matches local@domain.tld over the whole string: local is
// [A-Za-z0-9._%+-]+, domain is [A-Za-z0-9.-]+, tld is 2 to 7 letters.
var EmailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,7}$`)

// Email drops records whose Field is missing, nil, non-textual, or does not
// match Pattern (EmailPattern when nil). Matching records are kept unchanged.
type Email struct {
	Field   string
	Pattern *regexp.Regexp
}

func (e Email) Apply(in []records.Record) []records.Record {
	re := e.Pattern
	if re == nil {
		re = EmailPattern
	}
	return transformer.Filter(in, func(r records.Record) bool {
		return ValidEmail(re, r[e.Field])
	})
}

// ValidEmail reports whether v is a string fully matched by re.
func ValidEmail(re *regexp.Regexp, v any) bool {
	s, ok := stringValue(v)
	if !ok || s == "" {
		return false
	}
	return re.MatchString(s)
}
