package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/seeddump/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, metadata and paging implementations over information_schema.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return ErrNotConnected
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// SchemaName returns the configured schema or the dialect default.
func (b *BaseSQLAdapter) SchemaName(d *core.DialectConfig) string {
	if b.Cfg.Schema != "" {
		return b.Cfg.Schema
	}
	return d.DefaultSchema
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses defaultSchema if not specified.
func ParseQualifiedName(table string, defaultSchema string) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return defaultSchema, table
}

// ListTablesCommon lists base tables from information_schema.tables.
func (b *BaseSQLAdapter) ListTablesCommon(ctx context.Context, d *core.DialectConfig) ([]string, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	//nolint:gosec // Placeholders are safe - they come from the dialect
	query := fmt.Sprintf(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = %s AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, d.FormatPlaceholder(1))

	return b.queryStrings(ctx, query, b.SchemaName(d))
}

// GetTableMetadataCommon provides a shared implementation of GetTableMetadata.
// Uses information_schema.columns and table_constraints with
// dialect-appropriate placeholders.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, table string, d *core.DialectConfig) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	schema, tableName := ParseQualifiedName(table, b.SchemaName(d))

	//nolint:gosec // Placeholders are safe - they come from the dialect
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, d.FormatPlaceholder(1), d.FormatPlaceholder(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	//nolint:gosec // Placeholders are safe - they come from the dialect
	pkQuery := fmt.Sprintf(`
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
			AND kcu.table_name = tc.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = %s AND tc.table_name = %s
		ORDER BY kcu.ordinal_position
	`, d.FormatPlaceholder(1), d.FormatPlaceholder(2))

	pk, err := b.queryStrings(ctx, pkQuery, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query primary key: %w", err)
	}

	meta := &core.TableMetadata{
		Schema:  schema,
		Name:    tableName,
		Columns: columns,
	}
	MarkPrimaryKey(meta, pk)

	count, err := b.CountCommon(ctx, table, d)
	if err != nil {
		// Non-fatal, the count is informational here
		b.debug("row count unavailable", slog.String("table", table), slog.String("error", err.Error()))
	}
	meta.RowCount = count

	return meta, nil
}

// MarkPrimaryKey flags the primary key columns of meta. Only single-column
// keys become meta.PrimaryKey; composite keys are paged by offset.
func MarkPrimaryKey(meta *core.TableMetadata, pk []string) {
	for i := range meta.Columns {
		for _, name := range pk {
			if meta.Columns[i].Name == name {
				meta.Columns[i].PrimaryKey = true
			}
		}
	}
	if len(pk) == 1 {
		meta.PrimaryKey = pk[0]
	}
}

// ForeignKeysCommon reads single-column foreign keys from
// information_schema.referential_constraints.
func (b *BaseSQLAdapter) ForeignKeysCommon(ctx context.Context, d *core.DialectConfig) ([]core.ForeignKey, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	//nolint:gosec // Placeholders are safe - they come from the dialect
	query := fmt.Sprintf(`
		SELECT
			kcu.constraint_name,
			kcu.table_name,
			kcu.column_name,
			ref.table_name,
			ref.column_name
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_schema = rc.constraint_schema
			AND kcu.constraint_name = rc.constraint_name
		JOIN information_schema.key_column_usage ref
			ON ref.constraint_schema = rc.unique_constraint_schema
			AND ref.constraint_name = rc.unique_constraint_name
			AND ref.ordinal_position = kcu.position_in_unique_constraint
		WHERE kcu.table_schema = %s
		ORDER BY kcu.table_name, kcu.ordinal_position
	`, d.FormatPlaceholder(1))

	rows, err := b.DB.QueryContext(ctx, query, b.SchemaName(d))
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return ScanForeignKeys(rows)
}

// ScanForeignKeys reads (constraint, table, column, referenced table,
// referenced column) rows and drops composite keys, which cannot become
// reference tokens.
func ScanForeignKeys(rows *sql.Rows) ([]core.ForeignKey, error) {
	var (
		fks         []core.ForeignKey
		constraints []string
	)
	width := map[string]int{}
	for rows.Next() {
		var name string
		var fk core.ForeignKey
		if err := rows.Scan(&name, &fk.Table, &fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		name = fk.Table + "." + name
		width[name]++
		fks = append(fks, fk)
		constraints = append(constraints, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign keys: %w", err)
	}

	out := make([]core.ForeignKey, 0, len(fks))
	for i, fk := range fks {
		if width[constraints[i]] == 1 {
			out = append(out, fk)
		}
	}
	return out, nil
}

// BuildPageQuery renders the SELECT for one page. Keyset pages filter on
// q.OrderBy > q.After; offset pages skip q.After rows and are sorted by
// every column of q.Order (or q.Columns).
func BuildPageQuery(q core.PageQuery, d *core.DialectConfig) (string, []any) {
	cols := make([]string, len(q.Columns))
	for i, c := range q.Columns {
		cols[i] = d.QuoteIdentifier(c)
	}
	selectList := "*"
	if len(cols) > 0 {
		selectList = strings.Join(cols, ", ")
	}

	var sb strings.Builder
	var args []any
	fmt.Fprintf(&sb, "SELECT %s FROM %s", selectList, d.QuoteQualified(q.Table))

	if q.OrderBy != "" {
		key := d.QuoteIdentifier(q.OrderBy)
		if q.After != nil {
			fmt.Fprintf(&sb, " WHERE %s > %s", key, d.FormatPlaceholder(1))
			args = append(args, q.After)
		}
		fmt.Fprintf(&sb, " ORDER BY %s LIMIT %d", key, q.Limit)
		return sb.String(), args
	}

	order := q.Order
	if len(order) == 0 {
		order = q.Columns
	}
	if len(order) > 0 {
		keys := make([]string, len(order))
		for i, c := range order {
			keys[i] = d.QuoteIdentifier(c)
		}
		fmt.Fprintf(&sb, " ORDER BY %s", strings.Join(keys, ", "))
	}
	fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	if offset, ok := q.After.(int64); ok && offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", offset)
	}
	return sb.String(), args
}

// FetchPageCommon runs BuildPageQuery through database/sql and normalizes
// values by their reported column type.
func (b *BaseSQLAdapter) FetchPageCommon(ctx context.Context, q core.PageQuery, d *core.DialectConfig) (*core.Page, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	query, args := BuildPageQuery(q, d)
	b.debug("fetching page", slog.String("table", q.Table), slog.Int("limit", q.Limit), slog.Any("after", q.After))

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rows from %s: %w", q.Table, err)
	}
	defer func() { _ = rows.Close() }()

	return ScanPage(rows)
}

// ScanPage reads every remaining row of rows into a core.Page.
func ScanPage(rows *sql.Rows) (*core.Page, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	page := &core.Page{Columns: make([]string, len(types))}
	for i, t := range types {
		page.Columns[i] = t.Name()
	}

	for rows.Next() {
		values := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, t := range types {
			values[i] = Normalize(t.DatabaseTypeName(), values[i])
		}
		page.Rows = append(page.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return page, nil
}

// CountCommon counts the rows of table.
func (b *BaseSQLAdapter) CountCommon(ctx context.Context, table string, d *core.DialectConfig) (int64, error) {
	if b.DB == nil {
		return 0, ErrNotConnected
	}

	query := "SELECT COUNT(*) FROM " + d.QuoteQualified(table) //nolint:gosec // Identifier is quoted by the dialect
	var n int64
	if err := b.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}

func (b *BaseSQLAdapter) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func (b *BaseSQLAdapter) debug(msg string, attrs ...any) {
	if b.Logger != nil {
		b.Logger.Debug(msg, attrs...)
	}
}
