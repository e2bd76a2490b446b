package adapter

import (
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/seeddump/pkg/core"
)

// BaseType upper-cases a driver type name and strips its modifiers:
// "decimal(10,2)" becomes "DECIMAL", "VARCHAR(255)" becomes "VARCHAR".
func BaseType(dbType string) string {
	t := strings.ToUpper(strings.TrimSpace(dbType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimPrefix(t, "UNSIGNED ")
	return strings.TrimSuffix(t, " UNSIGNED")
}

// Normalize converts a scanned driver value into the value types the
// literal encoder renders canonically, based on the column's type name.
// Values it does not recognize are returned unchanged.
func Normalize(dbType string, v any) any {
	if v == nil {
		return nil
	}
	base := BaseType(dbType)

	switch x := v.(type) {
	case []byte:
		if isBinary(base) {
			return x
		}
		if base == "UUID" && len(x) == 16 {
			if u, err := uuid.FromBytes(x); err == nil {
				return u
			}
		}
		return normalizeText(base, string(x))
	case string:
		return normalizeText(base, x)
	case time.Time:
		if base == "DATE" {
			return core.NewDate(x)
		}
	case int64:
		if base == "BOOLEAN" || base == "BOOL" {
			return x != 0
		}
	}
	return v
}

func normalizeText(base, s string) any {
	switch {
	case isInteger(base):
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
	case base == "FLOAT" || base == "DOUBLE" || base == "REAL":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case base == "DECIMAL" || base == "NUMERIC":
		return core.Decimal(s)
	case base == "DATE":
		if t, err := time.Parse(core.DateLayout, s); err == nil {
			return core.NewDate(t)
		}
	case base == "DATETIME" || base == "TIMESTAMP":
		if t, err := time.Parse(core.DateTimeLayout, s); err == nil {
			return t
		}
	case base == "UUID":
		if u, err := uuid.Parse(s); err == nil {
			return u
		}
	case base == "INET" || base == "CIDR":
		if p, err := netip.ParsePrefix(s); err == nil {
			return p
		}
		if a, err := netip.ParseAddr(s); err == nil {
			return a
		}
	case base == "GEOMETRY" || base == "GEOGRAPHY":
		return core.WKT(s)
	case strings.HasSuffix(base, "RANGE"):
		if r, err := core.ParseRange(s); err == nil {
			return r
		}
	}
	return s
}

func isInteger(base string) bool {
	switch base {
	case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT", "YEAR":
		return true
	}
	return false
}

func isBinary(base string) bool {
	switch base {
	case "BLOB", "BYTEA", "BINARY", "VARBINARY", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB":
		return true
	}
	return false
}
