package builtin

import (
	"strconv"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"hretl/pkg/records"
)

// Salary normalizes Field to the integer formed by its ASCII digits and drops
// records whose value is nil, missing, has no digits, is zero, or overflows
// int64. Only strings, bytes, integers and floats are read; any other type is
// dropped. Survivors have Field replaced by the int64 value.
//
// Every non-digit is discarded, including a leading minus sign, so "-2000"
// becomes 2000. OnSignDropped, when set, is called with the raw text of such
// values.
type Salary struct {
	Field         string
	OnSignDropped func(raw string)
}

func (s Salary) Apply(in []records.Record) []records.Record {
	out := make([]records.Record, 0, len(in))
	for _, r := range in {
		raw, ok := numericText(r[s.Field])
		if !ok {
			continue
		}
		n, ok := ParseSalary(raw)
		if !ok {
			continue
		}
		if s.OnSignDropped != nil && strings.HasPrefix(strings.TrimSpace(raw), "-") {
			s.OnSignDropped(raw)
		}
		r[s.Field] = n
		out = append(out, r)
	}
	return out
}

// ParseSalary keeps only '0'-'9' from raw and parses the result. It reports
// false when the digits are empty, overflow, or evaluate to zero.
func ParseSalary(raw string) (int64, bool) {
	digits, _, err := transform.String(digitsOnly(), raw)
	if err != nil || digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func digitsOnly() transform.Transformer {
	return runes.Remove(runes.Predicate(func(r rune) bool { return r < '0' || r > '9' }))
}
