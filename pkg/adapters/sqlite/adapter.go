package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/seeddump/pkg/adapter"
	"github.com/leapstack-labs/seeddump/pkg/core"

	_ "modernc.org/sqlite" // sqlite driver
)

// Dialect holds SQLite's quoting and placeholder rules.
var Dialect = &core.DialectConfig{
	Name: "sqlite",
	Identifiers: core.IdentifierConfig{
		Quote:    `"`,
		QuoteEnd: `"`,
		Escape:   `""`,
	},
	DefaultSchema: "main",
	Placeholder:   core.PlaceholderQuestion,
}

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the SQLite dialect.
func (a *Adapter) Dialect() *core.DialectConfig {
	return Dialect
}

// Connect opens the database file at cfg.Path, or an in-memory database
// when the path is empty or ":memory:".
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	dsn := cfg.Path
	if dsn == "" {
		dsn = ":memory:"
	}
	if params.ReadOnly && dsn != ":memory:" {
		dsn += "?mode=ro"
	}

	a.Logger.Debug("connecting to sqlite", slog.String("path", dsn))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Every pooled connection to ":memory:" would be a separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	a.DB = db
	a.Cfg = cfg

	for _, stmt := range params.pragmaStatements() {
		if err := a.Exec(ctx, stmt); err != nil {
			_ = a.Close()
			a.DB = nil
			return fmt.Errorf("failed to apply sqlite pragma: %w", err)
		}
	}
	return nil
}

// ListTables returns the user tables of the database.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	if a.DB == nil {
		return nil, adapter.ErrNotConnected
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// GetTableMetadata reads columns and the primary key from pragma_table_info.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	if a.DB == nil {
		return nil, adapter.ErrNotConnected
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT name, type, "notnull", pk, cid
		FROM pragma_table_info(?)
		ORDER BY cid
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		columns []core.Column
		keyed   = map[int]string{}
	)
	for rows.Next() {
		var col core.Column
		var notNull, pk int
		if err := rows.Scan(&col.Name, &col.Type, &notNull, &pk, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Position++
		col.Nullable = notNull == 0
		if pk > 0 {
			keyed[pk] = col.Name
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	pk := make([]string, 0, len(keyed))
	for i := 1; i <= len(keyed); i++ {
		pk = append(pk, keyed[i])
	}

	meta := &core.TableMetadata{
		Schema:  Dialect.DefaultSchema,
		Name:    table,
		Columns: columns,
	}
	adapter.MarkPrimaryKey(meta, pk)

	if meta.RowCount, err = a.Count(ctx, table); err != nil {
		return nil, err
	}
	return meta, nil
}

// ForeignKeys reads pragma_foreign_key_list for every table. References
// that omit the target column resolve to the referenced table's primary key.
func (a *Adapter) ForeignKeys(ctx context.Context) ([]core.ForeignKey, error) {
	if a.DB == nil {
		return nil, adapter.ErrNotConnected
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT fk.id, m.name, fk."from", fk."table", COALESCE(fk."to", '')
		FROM sqlite_master m, pragma_foreign_key_list(m.name) fk
		WHERE m.type = 'table'
		ORDER BY m.name, fk.id, fk.seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	fks, err := adapter.ScanForeignKeys(rows)
	_ = rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range fks {
		if fks[i].ReferencedColumn != "" {
			continue
		}
		meta, err := a.GetTableMetadata(ctx, fks[i].ReferencedTable)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve foreign key %s.%s: %w", fks[i].Table, fks[i].Column, err)
		}
		fks[i].ReferencedColumn = meta.PrimaryKey
	}
	return fks, nil
}

// FetchPage reads one page of rows.
func (a *Adapter) FetchPage(ctx context.Context, q core.PageQuery) (*core.Page, error) {
	return a.FetchPageCommon(ctx, q, Dialect)
}

// Count returns the number of rows in table.
func (a *Adapter) Count(ctx context.Context, table string) (int64, error) {
	return a.CountCommon(ctx, table, Dialect)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
