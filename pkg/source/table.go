package source

import (
	"context"
	"fmt"
	"slices"

	"github.com/leapstack-labs/seeddump/pkg/core"
)

// Table is a store-backed record collection over one database table.
// Tables with a single-column key are paged by keyset, others by offset.
type Table struct {
	schema  *Schema
	name    string
	model   string
	columns []string
	key     string
	assocs  []core.Association
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Model returns the model name of the table's records.
func (t *Table) Model() string { return t.model }

// Key returns the keyset column, or "" when the table is paged by offset.
func (t *Table) Key() string { return t.key }

// AttributeNames returns the column names in ordinal order.
func (t *Table) AttributeNames() []string { return t.columns }

// Count returns the number of rows.
func (t *Table) Count(ctx context.Context) (int64, error) {
	return t.schema.adapter.Count(ctx, t.name)
}

// FetchPage returns up to limit records after the cursor.
func (t *Table) FetchPage(ctx context.Context, after any, limit int) ([]core.Record, any, error) {
	page, next, err := t.fetch(ctx, t.columns, t.key, after, limit)
	if err != nil {
		return nil, nil, err
	}

	records := make([]core.Record, len(page.Rows))
	for i, row := range page.Rows {
		records[i] = core.NewRow(t.model, page.Columns, row)
	}
	return records, next, nil
}

// HasIdentifier reports whether records carry an identifier: the key
// column, or an "id" column for tables paged by offset.
func (t *Table) HasIdentifier() bool {
	return t.idColumn() != ""
}

func (t *Table) idColumn() string {
	if t.key != "" {
		return t.key
	}
	if slices.Contains(t.columns, "id") {
		return "id"
	}
	return ""
}

// FetchIDs returns up to limit identifiers after the cursor. Offset pages
// keep the row order of FetchPage.
func (t *Table) FetchIDs(ctx context.Context, after any, limit int) ([]any, any, error) {
	idColumn := t.idColumn()
	if idColumn == "" {
		return nil, nil, fmt.Errorf("%s: %w", t.name, core.ErrNoIdentifier)
	}

	page, next, err := t.fetch(ctx, []string{idColumn}, t.key, after, limit)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]any, len(page.Rows))
	for i, row := range page.Rows {
		ids[i] = row[0]
	}
	return ids, next, nil
}

func (t *Table) fetch(ctx context.Context, columns []string, key string, after any, limit int) (*core.Page, any, error) {
	q := core.PageQuery{
		Table:   t.name,
		Columns: columns,
		OrderBy: key,
		After:   after,
		Limit:   limit,
	}
	if key == "" {
		q.Order = t.columns
		if after == nil {
			q.After = int64(0)
		}
	}

	page, err := t.schema.adapter.FetchPage(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	if len(page.Rows) == 0 {
		return page, after, nil
	}

	if key == "" {
		offset, _ := q.After.(int64)
		return page, offset + int64(len(page.Rows)), nil
	}

	idx := slices.Index(page.Columns, key)
	if idx < 0 {
		return nil, nil, fmt.Errorf("%s: key column %s missing from page", t.name, key)
	}
	return page, page.Rows[len(page.Rows)-1][idx], nil
}

// Associations returns the table's associations of kind.
func (t *Table) Associations(kind core.AssociationKind) []core.Association {
	var out []core.Association
	for _, a := range t.assocs {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Associated returns the whole table on the other side of a.
func (t *Table) Associated(ctx context.Context, a core.Association) (core.Collection, error) {
	if a.Table == "" {
		return nil, fmt.Errorf("association %s.%s has no table", t.model, a.Name)
	}
	return t.schema.Table(ctx, a.Table)
}

var (
	_ core.Batchable        = (*Table)(nil)
	_ core.AssociationAware = (*Table)(nil)
	_ core.Identified       = (*Table)(nil)
)
