package literal

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/leapstack-labs/seeddump/pkg/core"
)

// rangeString renders r as "[lower,upper]" or "[lower,upper)", or "empty"
// for the empty range. Unbounded or infinite endpoints render empty.
func rangeString(r core.Range) string {
	if r.Empty {
		return "empty"
	}
	lower, upper := "", ""
	if !r.LowerUnbounded && !isInfinite(r.Lower) {
		lower = rawString(r.Lower)
	}
	if !r.UpperUnbounded && !isInfinite(r.Upper) {
		upper = rawString(r.Upper)
	}
	closer := "]"
	if r.ExcludeUpper {
		closer = ")"
	}
	return "[" + lower + "," + upper + closer
}

func pgRangeString(v pgtype.RangeValuer) string {
	lowerType, upperType := v.BoundTypes()
	if lowerType == pgtype.Empty || upperType == pgtype.Empty {
		return rangeString(core.Range{Empty: true})
	}
	lower, upper := v.Bounds()
	return rangeString(core.Range{
		Lower:          deref(lower),
		Upper:          deref(upper),
		LowerUnbounded: lowerType == pgtype.Unbounded,
		UpperUnbounded: upperType == pgtype.Unbounded,
		ExcludeUpper:   upperType == pgtype.Exclusive,
	})
}

// isInfinite reports whether a range endpoint denotes infinity.
func isInfinite(v any) bool {
	switch x := deref(v).(type) {
	case float64:
		return math.IsInf(x, 0)
	case float32:
		return math.IsInf(float64(x), 0)
	case pgtype.Float8:
		return x.Valid && math.IsInf(x.Float64, 0)
	case pgtype.Date:
		return x.InfinityModifier != pgtype.Finite
	case pgtype.Timestamp:
		return x.InfinityModifier != pgtype.Finite
	case pgtype.Timestamptz:
		return x.InfinityModifier != pgtype.Finite
	case pgtype.InfinityModifier:
		return x != pgtype.Finite
	case string:
		s := strings.ToLower(x)
		return s == "infinity" || s == "-infinity"
	}
	return false
}

// rawString renders an endpoint in its plain (unquoted) text form.
func rawString(v any) string {
	v = deref(v)
	if v == nil {
		return ""
	}
	if s, ok := canonical(v); ok {
		return s
	}
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return Float(x)
	case float32:
		return Float(float64(x))
	case time.Duration:
		return x.String()
	case driver.Valuer:
		if dv, err := x.Value(); err == nil && reflect.TypeOf(dv) != reflect.TypeOf(v) {
			return rawString(dv)
		}
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// deref unwraps pointers, including the *T bounds pgtype ranges return.
func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// Raw renders v in its plain text form, the way it appears inside range
// literals and reference tokens. Nil renders empty.
func Raw(v any) string {
	return rawString(v)
}
