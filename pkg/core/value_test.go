package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		input   string
		want    Range
		wantErr bool
	}{
		{
			input: "[1,10)",
			want:  Range{Lower: "1", Upper: "10", ExcludeUpper: true},
		},
		{
			input: "[1,10]",
			want:  Range{Lower: "1", Upper: "10"},
		},
		{
			input: "[5,)",
			want:  Range{Lower: "5", Upper: "", UpperUnbounded: true, ExcludeUpper: true},
		},
		{
			input: "(,5]",
			want:  Range{Lower: "", Upper: "5", LowerUnbounded: true},
		},
		{
			input: `["2024-01-01 00:00:00","2024-02-01 00:00:00")`,
			want:  Range{Lower: "2024-01-01 00:00:00", Upper: "2024-02-01 00:00:00", ExcludeUpper: true},
		},
		{
			input: "[-infinity,infinity]",
			want:  Range{Lower: "-infinity", Upper: "infinity", LowerUnbounded: true, UpperUnbounded: true},
		},
		{input: "empty", want: Range{Empty: true}},
		{input: " EMPTY ", want: Range{Empty: true}},
		{input: "1,10", wantErr: true},
		{input: "[110]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRange(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWKT_GeometryType(t *testing.T) {
	assert.Equal(t, "POINT", WKT("POINT (1 2)").GeometryType())
	assert.Equal(t, "POLYGON", WKT("polygon((0 0,1 1,1 0,0 0))").GeometryType())
	assert.Equal(t, "POINT (1 2)", WKT("POINT (1 2)").String())
}

func TestDate_String(t *testing.T) {
	ts := time.Date(2024, time.March, 9, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-09", NewDate(ts).String())
}

func TestOptions(t *testing.T) {
	var o Options
	assert.Equal(t, map[string]bool{"id": true, "created_at": true, "updated_at": true}, o.ExcludeSet())
	assert.Equal(t, DefaultBatchSize, o.EffectiveBatchSize())
	assert.False(t, o.IsImport())

	o = Options{Exclude: []string{}, BatchSize: 10, ImportOptions: []ImportOption{{Key: "validate", Value: "false"}}}
	assert.Empty(t, o.ExcludeSet(), "empty non-nil exclude keeps every attribute")
	assert.Equal(t, 10, o.EffectiveBatchSize())
	assert.True(t, o.IsImport(), "import options imply import mode")
}

func TestDialectConfig(t *testing.T) {
	pg := &DialectConfig{Name: "postgres", Placeholder: PlaceholderDollar, Identifiers: IdentifierConfig{Quote: `"`}}
	assert.Equal(t, "$3", pg.FormatPlaceholder(3))
	assert.Equal(t, `"public"."blog_posts"`, pg.QuoteQualified("public.blog_posts"))
	assert.Equal(t, `"we""ird"`, pg.QuoteIdentifier(`we"ird`))

	my := &DialectConfig{Name: "mysql", Identifiers: IdentifierConfig{Quote: "`"}}
	assert.Equal(t, "?", my.FormatPlaceholder(1))
	assert.Equal(t, "`users`", my.QuoteIdentifier("users"))
}
