// Package adapter defines the database adapter contract used to read tables
// for seed dumps.
//
// This package contains the public contract that all database adapters must implement.
// Concrete adapter implementations are in pkg/adapters/ subdirectories.
package adapter

import (
	"context"
	"errors"

	"github.com/leapstack-labs/seeddump/pkg/core"
)

// Type aliases for the core types adapters exchange.
type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata
)

// ErrNotConnected is returned when an operation runs before Connect.
var ErrNotConnected = errors.New("database connection not established")

// Adapter defines the interface that all database adapters must implement.
// It provides methods for connecting to databases, describing tables and
// reading their rows page by page.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Dialect returns the quoting and placeholder rules for this adapter.
	Dialect() *core.DialectConfig

	// ListTables returns the base tables of the configured schema, sorted.
	ListTables(ctx context.Context) ([]string, error)

	// GetTableMetadata retrieves columns, primary key and row count.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)

	// ForeignKeys returns the single-column foreign keys of the configured
	// schema, ordered by table.
	ForeignKeys(ctx context.Context) ([]core.ForeignKey, error)

	// FetchPage reads one page of rows with values normalized for encoding.
	FetchPage(ctx context.Context, q core.PageQuery) (*core.Page, error)

	// Count returns the exact number of rows in table.
	Count(ctx context.Context, table string) (int64, error)
}
