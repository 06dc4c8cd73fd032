package builtin

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"hretl/pkg/records"
)

// JoinDate parses Field in a separator-delimited year/month/day notation and
// replaces it with the calendar date (midnight UTC). Records whose value is
// nil, missing, or not a valid date are dropped. A non-zero time.Time value,
// as returned by typed date columns, is kept as-is.
type JoinDate struct {
	Field string
}

func (j JoinDate) Apply(in []records.Record) []records.Record {
	out := make([]records.Record, 0, len(in))
	for _, r := range in {
		t, ok := parseDateValue(r[j.Field])
		if !ok {
			continue
		}
		r[j.Field] = t
		out = append(out, r)
	}
	return out
}

func parseDateValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	default:
		return ParseDate(asString(v))
	}
}

// ParseDate splits s on its first non-digit character and assigns the three
// tokens as follows: the first 4-character token is the year, the first
// remaining token below 13 is the month, and the token left over is the day.
//
//	"2022-02-20", "2022/02/20", "20-02-2022", "02/20/2022" -> 2022-02-20
//
// When both non-year tokens are below 13 the earlier one is taken as the
// month, so "03/04/2022" is March 4 regardless of locale.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if i < 0 {
		return time.Time{}, false
	}
	sep, _ := utf8.DecodeRuneInString(s[i:])
	tokens := strings.Split(s, string(sep))
	if len(tokens) != 3 {
		return time.Time{}, false
	}

	vals := make([]int, len(tokens))
	for k, tok := range tokens {
		if tok == "" || strings.IndexFunc(tok, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return time.Time{}, false
		}
		vals[k] = n
	}

	const unset = -1
	year, month, day := unset, unset, unset
	used := make([]bool, len(tokens))
	for k, tok := range tokens {
		if len(tok) == 4 {
			year, used[k] = vals[k], true
			break
		}
	}
	if year == unset {
		return time.Time{}, false
	}
	for k := range tokens {
		if !used[k] && vals[k] < 13 {
			month, used[k] = vals[k], true
			break
		}
	}
	for k := range tokens {
		if !used[k] {
			day = vals[k]
		}
	}
	if month == unset {
		return time.Time{}, false
	}

	return civilDate(year, month, day)
}

// civilDate builds a UTC date and rejects values time.Date would normalize,
// such as February 30.
func civilDate(y, m, d int) (time.Time, bool) {
	if y < 1 || m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
