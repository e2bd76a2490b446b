package core

import (
	"fmt"
	"strings"
	"time"
)

// Layouts used when rendering temporal values.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05.999999"
)

// Date is a calendar date without a time of day.
type Date time.Time

// NewDate returns the Date of t in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return time.Time(d).Format(DateLayout)
}

// Decimal is a fixed-precision number in canonical string form.
type Decimal string

// String returns the decimal text.
func (d Decimal) String() string { return string(d) }

// Range is an interval between two bounds. The lower bound is always
// treated as inclusive.
type Range struct {
	Lower          any
	Upper          any
	LowerUnbounded bool
	UpperUnbounded bool
	ExcludeUpper   bool
	// Empty marks the range containing no values; bounds are ignored.
	Empty bool
}

// ParseRange parses the textual range form used by PostgreSQL and DuckDB,
// e.g. "[1,10)", "(,5]" or "empty". Bounds are kept as strings, with
// surrounding double quotes removed.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "empty") {
		return Range{Empty: true}, nil
	}
	if len(s) < 3 || !strings.ContainsAny(s[:1], "[(") || !strings.ContainsAny(s[len(s)-1:], "])") {
		return Range{}, fmt.Errorf("invalid range literal %q", s)
	}
	body := s[1 : len(s)-1]
	lower, upper, ok := strings.Cut(body, ",")
	if !ok {
		return Range{}, fmt.Errorf("invalid range literal %q", s)
	}
	lower = strings.Trim(strings.TrimSpace(lower), `"`)
	upper = strings.Trim(strings.TrimSpace(upper), `"`)

	r := Range{
		Lower:        lower,
		Upper:        upper,
		ExcludeUpper: s[len(s)-1] == ')',
	}
	if lower == "" || strings.EqualFold(lower, "-infinity") {
		r.LowerUnbounded = true
	}
	if upper == "" || strings.EqualFold(upper, "infinity") {
		r.UpperUnbounded = true
	}
	return r, nil
}

// GeometryLike is implemented by spatial values that render as text.
type GeometryLike interface {
	GeometryType() string
	String() string
}

// WKT is a geometry in well-known-text form, e.g. "POINT (1 2)".
type WKT string

// GeometryType returns the leading geometry keyword.
func (w WKT) GeometryType() string {
	s := strings.TrimSpace(string(w))
	if i := strings.IndexAny(s, " ("); i >= 0 {
		s = s[:i]
	}
	return strings.ToUpper(s)
}

// String returns the WKT text.
func (w WKT) String() string { return string(w) }

var _ GeometryLike = WKT("")
