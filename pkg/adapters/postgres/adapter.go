package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/leapstack-labs/seeddump/pkg/adapter"
	"github.com/leapstack-labs/seeddump/pkg/core"
)

// Dialect holds PostgreSQL's quoting and placeholder rules.
var Dialect = &core.DialectConfig{
	Name: "postgres",
	Identifiers: core.IdentifierConfig{
		Quote:    `"`,
		QuoteEnd: `"`,
		Escape:   `""`,
	},
	DefaultSchema: "public",
	Placeholder:   core.PlaceholderDollar,
}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the PostgreSQL dialect.
func (a *Adapter) Dialect() *core.DialectConfig {
	return Dialect
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg adapter.Config) string {
	// Build key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
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

// FetchPage reads one page through the native pgx connection so values keep
// their pgtype representation (numerics, ranges, network types).
func (a *Adapter) FetchPage(ctx context.Context, q core.PageQuery) (*core.Page, error) {
	if a.DB == nil {
		return nil, adapter.ErrNotConnected
	}

	query, args := adapter.BuildPageQuery(q, Dialect)
	a.Logger.Debug("fetching page", slog.String("table", q.Table), slog.Int("limit", q.Limit), slog.Any("after", q.After))

	conn, err := a.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var page *core.Page
	err = conn.Raw(func(driverConn any) error {
		pgxConn := driverConn.(*stdlib.Conn).Conn()

		rows, err := pgxConn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		page, err = scanRows(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rows from %s: %w", q.Table, err)
	}
	return page, nil
}

func scanRows(rows pgx.Rows) (*core.Page, error) {
	fields := rows.FieldDescriptions()
	page := &core.Page{Columns: make([]string, len(fields))}
	for i, f := range fields {
		page.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}
		for i, f := range fields {
			values[i] = normalize(f.DataTypeOID, values[i])
		}
		page.Rows = append(page.Rows, values)
	}
	return page, rows.Err()
}

// normalize fixes up the pgx values whose Go type loses the column's
// meaning: dates decode as time.Time and UUIDs as raw byte arrays.
func normalize(oid uint32, v any) any {
	switch oid {
	case pgtype.DateOID:
		if t, ok := v.(time.Time); ok {
			return core.NewDate(t)
		}
	case pgtype.UUIDOID:
		if b, ok := v.([16]byte); ok {
			return uuid.UUID(b)
		}
	case pgtype.UUIDArrayOID, pgtype.DateArrayOID:
		if list, ok := v.([]any); ok {
			elem := uint32(pgtype.UUIDOID)
			if oid == pgtype.DateArrayOID {
				elem = pgtype.DateOID
			}
			for i := range list {
				list[i] = normalize(elem, list[i])
			}
		}
	}
	return v
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
