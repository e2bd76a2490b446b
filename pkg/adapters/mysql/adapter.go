package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/seeddump/pkg/adapter"
	"github.com/leapstack-labs/seeddump/pkg/core"
)

// Dialect holds MySQL's quoting and placeholder rules.
var Dialect = &core.DialectConfig{
	Name: "mysql",
	Identifiers: core.IdentifierConfig{
		Quote:    "`",
		QuoteEnd: "`",
		Escape:   "``",
	},
	Placeholder: core.PlaceholderQuestion,
}

// Adapter implements the adapter.Adapter interface for MySQL.
// The schema is the connected database unless Config.Schema names another.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new MySQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the MySQL dialect.
func (a *Adapter) Dialect() *core.DialectConfig {
	return Dialect
}

// Connect establishes a connection to MySQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	a.Logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("mysql", buildDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	a.DB = db
	a.Cfg = withSchema(cfg)
	return nil
}

func withSchema(cfg adapter.Config) adapter.Config {
	if cfg.Schema == "" {
		cfg.Schema = cfg.Database
	}
	return cfg
}

// buildDSN renders cfg with the driver's own formatter. Options become
// DSN parameters; parseTime is always on so DATETIME scans as time.Time.
func buildDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	if len(cfg.Options) > 0 {
		mc.Params = make(map[string]string, len(cfg.Options))
		for k, v := range cfg.Options {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

// ListTables returns the base tables of the schema.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return a.ListTablesCommon(ctx, Dialect)
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	return a.GetTableMetadataCommon(ctx, table, Dialect)
}

// ForeignKeys reads key_column_usage, which carries the referenced table
// and column directly in MySQL.
func (a *Adapter) ForeignKeys(ctx context.Context) ([]core.ForeignKey, error) {
	if a.DB == nil {
		return nil, adapter.ErrNotConnected
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT
			constraint_name,
			table_name,
			column_name,
			referenced_table_name,
			referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND referenced_table_name IS NOT NULL
		ORDER BY table_name, constraint_name, ordinal_position
	`, a.SchemaName(Dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return adapter.ScanForeignKeys(rows)
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
