package literal

import (
	"math"
	"math/big"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/leapstack-labs/seeddump/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type status string

type point struct{}

func (p point) GeometryType() string { return "POINT" }
func (p point) String() string       { return "POINT (1 2)" }

func TestEncode_Native(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, "nil"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"uint8", uint8(255), "255"},
		{"float whole", 1.0, "1.0"},
		{"float fraction", 2.5, "2.5"},
		{"float large", 1e20, "1.0e+20"},
		{"float small", 0.00001, "1.0e-05"},
		{"float nan", math.NaN(), "Float::NAN"},
		{"float inf", math.Inf(1), "Float::INFINITY"},
		{"float neg inf", math.Inf(-1), "-Float::INFINITY"},
		{"string", "hello", `"hello"`},
		{"string quotes", `say "hi"`, `"say \"hi\""`},
		{"string newline", "a\nb", `"a\nb"`},
		{"string interpolation", "#{x} #$y #@z #plain", `"\#{x} \#$y \#@z #plain"`},
		{"string unicode", "héllo ✓", `"héllo ✓"`},
		{"string control", "a\x01b", `"a\u0001b"`},
		{"string escape", "\x1b[0m", `"\e[0m"`},
		{"bytes invalid utf8", []byte{0xff, 'a'}, `"\xFFa"`},
		{"big int", big.NewInt(12345678901234), "12345678901234"},
		{"list", []any{1, "a", nil}, `[1, "a", nil]`},
		{"map sorted", map[string]any{"b": 2, "a": 1}, `{"a" => 1, "b" => 2}`},
		{"empty map", map[string]any{}, "{}"},
		{"named string", status("active"), `"active"`},
		{"int slice", []int64{1, 2}, "[1, 2]"},
		{"string slice", []string{"x"}, `["x"]`},
		{"pointer", func() any { s := "p"; return &s }(), `"p"`},
		{"nil pointer", (*int)(nil), "nil"},
		{"duration", 90 * time.Second, `"1m30s"`},
		{"struct fallback", struct{ A int }{1}, `"{1}"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.input))
		})
	}
}

func TestEncode_Canonical(t *testing.T) {
	ts := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	tsFrac := time.Date(2024, time.January, 2, 3, 4, 5, 123456000, time.UTC)
	tsPlus2 := time.Date(2024, time.January, 2, 5, 4, 5, 0, time.FixedZone("UTC+2", 2*60*60))

	var numeric pgtype.Numeric
	assert.NoError(t, numeric.Scan("12.50"))

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"decimal", core.Decimal("19.99"), `"19.99"`},
		{"pgtype numeric", numeric, `"12.50"`},
		{"big float", big.NewFloat(1.5), `"1.5"`},
		{"big rat", big.NewRat(1, 4), `"0.25"`},
		{"big rat repeating", big.NewRat(1, 3), `"0.333333333333333333"`},
		{"netip addr", netip.MustParseAddr("10.0.0.1"), `"10.0.0.1"`},
		{"netip prefix", netip.MustParsePrefix("192.168.0.0/24"), `"192.168.0.0/24"`},
		{"netip host prefix", netip.MustParsePrefix("10.1.2.3/32"), `"10.1.2.3"`},
		{"net ip", net.ParseIP("::1"), `"::1"`},
		{"time", ts, `"2024-01-02 03:04:05"`},
		{"time fraction", tsFrac, `"2024-01-02 03:04:05.123456"`},
		{"time in another zone", tsPlus2, `"2024-01-02 03:04:05"`},
		{"pgtype timestamptz in another zone", pgtype.Timestamptz{Time: tsPlus2, Valid: true}, `"2024-01-02 03:04:05"`},
		{"date", core.NewDate(ts), `"2024-01-02"`},
		{"pgtype date", pgtype.Date{Time: ts, Valid: true}, `"2024-01-02"`},
		{"pgtype timestamp", pgtype.Timestamp{Time: ts, Valid: true}, `"2024-01-02 03:04:05"`},
		{"pgtype timestamptz infinity", pgtype.Timestamptz{InfinityModifier: pgtype.Infinity, Valid: true}, `"infinity"`},
		{"invalid pgtype date", pgtype.Date{}, "nil"},
		{"geometry", point{}, `"POINT (1 2)"`},
		{"wkt", core.WKT("LINESTRING (0 0, 1 1)"), `"LINESTRING (0 0, 1 1)"`},
		{"uuid", uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), `"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`},
		{"uuid bytes", [16]byte(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")), `"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`},
		{"pgtype int4 valuer", pgtype.Int4{Int32: 9, Valid: true}, "9"},
		{"pgtype text valuer", pgtype.Text{String: "x", Valid: true}, `"x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.input))
		})
	}
}

func TestEncode_Range(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			name:  "bounded exclusive",
			input: core.Range{Lower: 1, Upper: 10, ExcludeUpper: true},
			want:  `"[1,10)"`,
		},
		{
			name:  "bounded inclusive",
			input: core.Range{Lower: 1, Upper: 10},
			want:  `"[1,10]"`,
		},
		{
			name:  "infinite upper",
			input: core.Range{Lower: 1, Upper: math.Inf(1), ExcludeUpper: true},
			want:  `"[1,)"`,
		},
		{
			name:  "infinite lower",
			input: core.Range{Lower: math.Inf(-1), Upper: 5},
			want:  `"[,5]"`,
		},
		{
			name:  "unbounded flag",
			input: core.Range{Lower: 1, UpperUnbounded: true, ExcludeUpper: true},
			want:  `"[1,)"`,
		},
		{
			name: "time bounds",
			input: core.Range{
				Lower: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Upper: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			},
			want: `"[2024-01-01 00:00:00,2024-02-01 00:00:00]"`,
		},
		{
			name: "pgtype range",
			input: pgtype.Range[pgtype.Int4]{
				Lower:     pgtype.Int4{Int32: 1, Valid: true},
				Upper:     pgtype.Int4{Int32: 10, Valid: true},
				LowerType: pgtype.Inclusive,
				UpperType: pgtype.Exclusive,
				Valid:     true,
			},
			want: `"[1,10)"`,
		},
		{
			name: "pgtype range unbounded upper",
			input: pgtype.Range[any]{
				Lower:     int32(1),
				LowerType: pgtype.Inclusive,
				UpperType: pgtype.Unbounded,
				Valid:     true,
			},
			want: `"[1,)"`,
		},
		{
			name:  "pgtype empty range",
			input: pgtype.Range[any]{LowerType: pgtype.Empty, UpperType: pgtype.Empty, Valid: true},
			want:  `"empty"`,
		},
		{
			name:  "empty range",
			input: core.Range{Empty: true, Lower: "1", Upper: "2"},
			want:  `"empty"`,
		},
		{
			name:  "empty range parsed from text",
			input: mustParseRange(t, "empty"),
			want:  `"empty"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.input))
		})
	}
}

func mustParseRange(t *testing.T, s string) core.Range {
	t.Helper()
	r, err := core.ParseRange(s)
	require.NoError(t, err)
	return r
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, ":name", Symbol("name"))
	assert.Equal(t, ":user_id", Symbol("user_id"))
	assert.Equal(t, ":valid?", Symbol("valid?"))
	assert.Equal(t, `:"first name"`, Symbol("first name"))
	assert.Equal(t, `:"1st"`, Symbol("1st"))
	assert.Equal(t, `:""`, Symbol(""))
}
