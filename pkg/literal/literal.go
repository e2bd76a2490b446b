// Package literal encodes Go values as Ruby literals for generated seed code.
//
// Encode is total: values it does not recognise degrade to a quoted string of
// their default formatting rather than failing the dump.
package literal

import (
	"database/sql/driver"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/netip"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/leapstack-labs/seeddump/pkg/core"
)

// maxValuerDepth bounds driver.Valuer unwrapping.
const maxValuerDepth = 4

// Encode returns the literal form of v.
func Encode(v any) string {
	return encode(v, 0)
}

func encode(v any, depth int) string {
	if v == nil {
		return "nil"
	}

	if s, ok := canonical(v); ok {
		return String(s)
	}

	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case string:
		return String(x)
	case []byte:
		return String(string(x))
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case *big.Int:
		if x == nil {
			return "nil"
		}
		return x.String()
	case []any:
		return encodeList(len(x), func(i int) any { return x[i] }, depth)
	case map[string]any:
		return encodeMap(reflect.ValueOf(x), depth)
	case driver.Valuer:
		if depth < maxValuerDepth {
			dv, err := x.Value()
			if err == nil && reflect.TypeOf(dv) != reflect.TypeOf(v) {
				return encode(dv, depth+1)
			}
		}
	}

	if s, ok := v.(fmt.Stringer); ok {
		return String(s.String())
	}
	return encodeReflect(reflect.ValueOf(v), depth)
}

// canonical handles the values that are rendered as a quoted canonical
// string: decimals, network addresses, temporal values, ranges, geometry
// and UUIDs.
func canonical(v any) (string, bool) {
	switch x := v.(type) {
	case core.Decimal:
		return string(x), true
	case pgtype.Numeric:
		if !x.Valid {
			return "", false
		}
		dv, err := x.Value()
		if err != nil {
			return "", false
		}
		s, ok := dv.(string)
		return s, ok
	case *big.Float:
		if x == nil {
			return "", false
		}
		return x.Text('f', -1), true
	case *big.Rat:
		if x == nil {
			return "", false
		}
		return ratString(x), true

	case netip.Addr:
		return x.String(), true
	case netip.Prefix:
		if x.IsSingleIP() {
			return x.Addr().String(), true
		}
		return x.String(), true
	case net.IP:
		return x.String(), true
	case *net.IPNet:
		if x == nil {
			return "", false
		}
		return x.String(), true

	case time.Time:
		return x.UTC().Format(core.DateTimeLayout), true
	case core.Date:
		return x.String(), true
	case pgtype.Date:
		if !x.Valid {
			return "", false
		}
		return temporalString(x.Time, x.InfinityModifier, core.DateLayout), true
	case pgtype.Timestamp:
		if !x.Valid {
			return "", false
		}
		return temporalString(x.Time, x.InfinityModifier, core.DateTimeLayout), true
	case pgtype.Timestamptz:
		if !x.Valid {
			return "", false
		}
		return temporalString(x.Time.UTC(), x.InfinityModifier, core.DateTimeLayout), true

	case core.Range:
		return rangeString(x), true
	case pgtype.RangeValuer:
		if x.IsNull() {
			return "", false
		}
		return pgRangeString(x), true

	case core.GeometryLike:
		return x.String(), true

	case uuid.UUID:
		return x.String(), true
	case [16]byte:
		return uuid.UUID(x).String(), true
	}
	return "", false
}

func temporalString(t time.Time, inf pgtype.InfinityModifier, layout string) string {
	switch inf {
	case pgtype.Infinity:
		return "infinity"
	case pgtype.NegativeInfinity:
		return "-infinity"
	}
	return t.Format(layout)
}

// ratString renders a rational exactly when it has a finite decimal
// expansion, otherwise with 18 fractional digits.
func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	if n, exact := r.FloatPrec(); exact {
		return r.FloatString(n)
	}
	return r.FloatString(18)
}

// Float renders a float the way Ruby's Float#inspect does.
func Float(f float64) string {
	switch {
	case math.IsNaN(f):
		return "Float::NAN"
	case math.IsInf(f, 1):
		return "Float::INFINITY"
	case math.IsInf(f, -1):
		return "-Float::INFINITY"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		if !strings.Contains(mant, ".") {
			mant += ".0"
		}
		return mant + "e" + exp
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// String returns s as a double-quoted Ruby string literal.
func String(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, width := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && width == 1 {
			fmt.Fprintf(&b, `\x%02X`, s[i])
			i++
			continue
		}
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case 0x1b:
			b.WriteString(`\e`)
		case '#':
			// "#{", "#$" and "#@" would interpolate.
			if next := i + 1; next < len(s) && strings.IndexByte("{$@", s[next]) >= 0 {
				b.WriteString(`\#`)
			} else {
				b.WriteByte('#')
			}
		default:
			switch {
			case unicode.IsPrint(r):
				b.WriteRune(r)
			case r < 0x10000:
				fmt.Fprintf(&b, `\u%04X`, r)
			default:
				fmt.Fprintf(&b, `\u{%X}`, r)
			}
		}
		i += width
	}
	b.WriteByte('"')
	return b.String()
}

// Symbol returns name as a Ruby symbol literal.
func Symbol(name string) string {
	if isPlainSymbol(name) {
		return ":" + name
	}
	return ":" + String(name)
}

func isPlainSymbol(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		case (r == '?' || r == '!' || r == '=') && i == len(name)-1 && i > 0:
		default:
			return false
		}
	}
	return true
}

func encodeList(n int, at func(int) any, depth int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = encode(at(i), depth)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func encodeMap(m reflect.Value, depth int) string {
	type pair struct{ k, v string }
	pairs := make([]pair, 0, m.Len())
	iter := m.MapRange()
	for iter.Next() {
		pairs = append(pairs, pair{
			k: encode(iter.Key().Interface(), depth),
			v: encode(iter.Value().Interface(), depth),
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	if len(pairs) == 0 {
		return "{}"
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.k + " => " + p.v
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// encodeReflect covers named types and containers the type switch misses.
func encodeReflect(rv reflect.Value, depth int) string {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return encode(rv.Elem().Interface(), depth)
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.String:
		return String(rv.String())
	case reflect.Slice:
		if rv.IsNil() {
			return "nil"
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return String(string(rv.Bytes()))
		}
		return encodeList(rv.Len(), func(i int) any { return rv.Index(i).Interface() }, depth)
	case reflect.Array:
		return encodeList(rv.Len(), func(i int) any { return rv.Index(i).Interface() }, depth)
	case reflect.Map:
		if rv.IsNil() {
			return "nil"
		}
		return encodeMap(rv, depth)
	}
	return String(fmt.Sprint(rv.Interface()))
}
