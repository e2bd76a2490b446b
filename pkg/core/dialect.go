package core

import (
	"strconv"
	"strings"
)

// DialectConfig holds the static configuration for a SQL dialect.
// This is pure data plus two formatting helpers.
type DialectConfig struct {
	// Name is the dialect identifier (e.g., "duckdb", "postgres")
	Name string

	// Identifiers defines quoting rules
	Identifiers IdentifierConfig

	// DefaultSchema is the default schema name ("main" for DuckDB, "public" for Postgres)
	DefaultSchema string

	// Placeholder defines how query parameters are formatted
	Placeholder PlaceholderStyle
}

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (DuckDB, MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
)

// IdentifierConfig defines how identifiers are quoted.
type IdentifierConfig struct {
	Quote    string // Quote character: ", `
	QuoteEnd string // End quote character (usually same as Quote)
	Escape   string // Escape sequence: "", ``
}

// FormatPlaceholder returns the placeholder for the 1-based parameter index.
func (d *DialectConfig) FormatPlaceholder(index int) string {
	if d.Placeholder == PlaceholderDollar {
		return "$" + strconv.Itoa(index)
	}
	return "?"
}

// QuoteIdentifier quotes a single identifier.
func (d *DialectConfig) QuoteIdentifier(name string) string {
	q, end := d.Identifiers.Quote, d.Identifiers.QuoteEnd
	if q == "" {
		q = `"`
	}
	if end == "" {
		end = q
	}
	esc := d.Identifiers.Escape
	if esc == "" {
		esc = end + end
	}
	return q + strings.ReplaceAll(name, end, esc) + end
}

// QuoteQualified quotes a possibly schema-qualified name ("schema.table").
func (d *DialectConfig) QuoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
