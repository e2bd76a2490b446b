package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/leapstack-labs/seeddump/pkg/adapter"
	"github.com/leapstack-labs/seeddump/pkg/core"
	"github.com/marcboeker/go-duckdb"
)

// Dialect holds DuckDB's quoting and placeholder rules.
var Dialect = &core.DialectConfig{
	Name: "duckdb",
	Identifiers: core.IdentifierConfig{
		Quote:    `"`,
		QuoteEnd: `"`,
		Escape:   `""`,
	},
	DefaultSchema: "main",
	Placeholder:   core.PlaceholderQuestion,
}

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the DuckDB dialect.
func (a *Adapter) Dialect() *core.DialectConfig {
	return Dialect
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	// Session settings must land on the connection that serves queries.
	db.SetMaxOpenConns(1)

	a.DB = db
	a.Cfg = cfg

	for _, stmt := range params.setupStatements() {
		if err := a.Exec(ctx, stmt); err != nil {
			_ = a.Close()
			a.DB = nil
			return fmt.Errorf("failed to apply duckdb params: %w", err)
		}
	}
	return nil
}

// ListTables returns the base tables of the configured schema.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return a.ListTablesCommon(ctx, Dialect)
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	return a.GetTableMetadataCommon(ctx, table, Dialect)
}

// ForeignKeys returns the single-column foreign keys of the schema.
func (a *Adapter) ForeignKeys(ctx context.Context) ([]core.ForeignKey, error) {
	return a.ForeignKeysCommon(ctx, Dialect)
}

// Count returns the number of rows in table.
func (a *Adapter) Count(ctx context.Context, table string) (int64, error) {
	return a.CountCommon(ctx, table, Dialect)
}

// FetchPage reads one page and converts DuckDB's driver types.
func (a *Adapter) FetchPage(ctx context.Context, q core.PageQuery) (*core.Page, error) {
	page, err := a.FetchPageCommon(ctx, q, Dialect)
	if err != nil {
		return nil, err
	}
	for _, row := range page.Rows {
		for i, v := range row {
			row[i] = normalize(v)
		}
	}
	return page, nil
}

// normalize converts go-duckdb's composite values.
func normalize(v any) any {
	switch x := v.(type) {
	case duckdb.Decimal:
		return core.Decimal(decimalString(x.Value, x.Scale))
	case duckdb.Interval:
		return intervalString(x)
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	}
	return v
}

// decimalString formats an unscaled integer with scale fractional digits.
func decimalString(unscaled *big.Int, scale uint8) string {
	if unscaled == nil {
		return "0"
	}
	digits := new(big.Int).Abs(unscaled).String()
	sign := ""
	if unscaled.Sign() < 0 {
		sign = "-"
	}
	if scale == 0 {
		return sign + digits
	}
	if pad := int(scale) + 1 - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	cut := len(digits) - int(scale)
	return sign + digits[:cut] + "." + digits[cut:]
}

// intervalString renders an interval as an ISO 8601 duration.
func intervalString(iv duckdb.Interval) string {
	var sb strings.Builder
	sb.WriteString("P")
	if y, m := iv.Months/12, iv.Months%12; y != 0 || m != 0 {
		if y != 0 {
			fmt.Fprintf(&sb, "%dY", y)
		}
		if m != 0 {
			fmt.Fprintf(&sb, "%dM", m)
		}
	}
	if iv.Days != 0 {
		fmt.Fprintf(&sb, "%dD", iv.Days)
	}
	if iv.Micros != 0 {
		d := time.Duration(iv.Micros) * time.Microsecond
		h := int64(d / time.Hour)
		d -= time.Duration(h) * time.Hour
		m := int64(d / time.Minute)
		d -= time.Duration(m) * time.Minute
		sb.WriteString("T")
		if h != 0 {
			fmt.Fprintf(&sb, "%dH", h)
		}
		if m != 0 {
			fmt.Fprintf(&sb, "%dM", m)
		}
		if d != 0 {
			fmt.Fprintf(&sb, "%sS", strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.6f", d.Seconds()), "0"), "."))
		}
	}
	if sb.Len() == 1 {
		return "PT0S"
	}
	return sb.String()
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
