package source

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"
	"github.com/leapstack-labs/seeddump/pkg/adapter"
	"github.com/leapstack-labs/seeddump/pkg/core"
)

// Polymorphic declares a belongs-to whose target type is stored in a
// column. ForeignKey and ForeignType default to <name>_id and <name>_type.
type Polymorphic struct {
	Name        string
	ForeignKey  string
	ForeignType string
}

// ModelConfig overrides what the schema infers for one table.
type ModelConfig struct {
	// Name replaces the model name derived from the table name.
	Name string
	// PrimaryKey replaces the detected single-column primary key.
	PrimaryKey string
	// Polymorphic lists polymorphic belongs-to associations.
	Polymorphic []Polymorphic
	// HasOne lists child tables whose inbound foreign key is a has-one
	// rather than a has-many.
	HasOne []string
}

// UnknownTableError is returned when a requested table does not exist.
type UnknownTableError struct {
	Name      string
	Available []string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table %q\nAvailable tables: %v", e.Name, e.Available)
}

// Schema resolves tables and their associations through an adapter.
// It is safe for concurrent use.
type Schema struct {
	adapter adapter.Adapter
	models  map[string]ModelConfig
	logger  *slog.Logger

	mu        sync.Mutex
	tables    []string
	meta      map[string]*core.TableMetadata
	fks       []core.ForeignKey
	fksLoaded bool
}

// NewSchema creates a Schema over a connected adapter.
// If logger is nil, a discard logger is used.
func NewSchema(a adapter.Adapter, models map[string]ModelConfig, logger *slog.Logger) *Schema {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Schema{
		adapter: a,
		models:  models,
		logger:  logger,
		meta:    make(map[string]*core.TableMetadata),
	}
}

// Tables returns the table names, sorted.
func (s *Schema) Tables(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tablesLocked(ctx)
}

func (s *Schema) tablesLocked(ctx context.Context) ([]string, error) {
	if s.tables != nil {
		return s.tables, nil
	}
	tables, err := s.adapter.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	if tables == nil {
		tables = []string{}
	}
	s.tables = tables
	return tables, nil
}

// ModelName returns the configured model name for table, or the singular
// camel-cased table name ("blog_posts" becomes "BlogPost").
func (s *Schema) ModelName(table string) string {
	if m, ok := s.models[table]; ok && m.Name != "" {
		return m.Name
	}
	_, name := adapter.ParseQualifiedName(table, "")
	return inflect.Camelize(inflect.Singularize(name))
}

// Table returns the collection for the named table.
func (s *Schema) Table(ctx context.Context, name string) (*Table, error) {
	meta, err := s.metadata(ctx, name)
	if err != nil {
		return nil, err
	}
	assocs, err := s.Associations(ctx, name)
	if err != nil {
		return nil, err
	}

	key := meta.PrimaryKey
	if m, ok := s.models[name]; ok && m.PrimaryKey != "" {
		key = m.PrimaryKey
	}

	return &Table{
		schema:  s,
		name:    name,
		model:   s.ModelName(name),
		columns: meta.ColumnNames(),
		key:     key,
		assocs:  assocs,
	}, nil
}

// Metadata returns the cached metadata for table.
func (s *Schema) Metadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	return s.metadata(ctx, table)
}

func (s *Schema) metadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meta, ok := s.meta[table]; ok {
		return meta, nil
	}

	tables, err := s.tablesLocked(ctx)
	if err != nil {
		return nil, err
	}
	_, bare := adapter.ParseQualifiedName(table, "")
	if !slices.Contains(tables, table) && !slices.Contains(tables, bare) {
		return nil, &UnknownTableError{Name: table, Available: tables}
	}

	meta, err := s.adapter.GetTableMetadata(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	s.meta[table] = meta
	s.logger.Debug("loaded table metadata",
		slog.String("table", table),
		slog.Int("columns", len(meta.Columns)),
		slog.String("primary_key", meta.PrimaryKey))
	return meta, nil
}

func (s *Schema) foreignKeys(ctx context.Context) ([]core.ForeignKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fksLoaded {
		return s.fks, nil
	}
	fks, err := s.adapter.ForeignKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load foreign keys: %w", err)
	}
	s.fks, s.fksLoaded = fks, true
	return fks, nil
}

// Associations derives the associations of table: belongs-to from its own
// foreign keys and polymorphic declarations, has-many (or declared has-one)
// from other tables' foreign keys pointing at it.
func (s *Schema) Associations(ctx context.Context, table string) ([]core.Association, error) {
	fks, err := s.foreignKeys(ctx)
	if err != nil {
		return nil, err
	}

	cfg := s.models[table]
	var assocs []core.Association
	used := map[string]bool{}
	name := func(base string) string {
		n := base
		for i := 2; used[n]; i++ {
			n = fmt.Sprintf("%s_%d", base, i)
		}
		used[n] = true
		return n
	}

	for _, fk := range fks {
		if fk.Table != table {
			continue
		}
		assocs = append(assocs, core.Association{
			Kind:       core.BelongsTo,
			Name:       name(belongsToName(fk)),
			ForeignKey: fk.Column,
			Model:      s.ModelName(fk.ReferencedTable),
			Table:      fk.ReferencedTable,
		})
	}

	for _, p := range cfg.Polymorphic {
		fk, typ := p.ForeignKey, p.ForeignType
		if fk == "" {
			fk = p.Name + "_id"
		}
		if typ == "" {
			typ = p.Name + "_type"
		}
		assocs = append(assocs, core.Association{
			Kind:        core.BelongsTo,
			Name:        name(p.Name),
			ForeignKey:  fk,
			Polymorphic: true,
			ForeignType: typ,
		})
	}

	for _, fk := range fks {
		// Self references would re-dump the table being dumped.
		if fk.ReferencedTable != table || fk.Table == table {
			continue
		}
		kind, base := core.HasMany, fk.Table
		if slices.Contains(cfg.HasOne, fk.Table) {
			kind, base = core.HasOne, inflect.Singularize(fk.Table)
		}
		assocs = append(assocs, core.Association{
			Kind:       kind,
			Name:       name(base),
			ForeignKey: fk.Column,
			Model:      s.ModelName(fk.Table),
			Table:      fk.Table,
		})
	}

	return assocs, nil
}

// belongsToName names a belongs-to after its foreign key column
// ("author_id" becomes "author").
func belongsToName(fk core.ForeignKey) string {
	if base, ok := strings.CutSuffix(fk.Column, "_id"); ok && base != "" {
		return base
	}
	return inflect.Singularize(fk.ReferencedTable)
}
