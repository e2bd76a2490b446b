package testutil

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/seeddump/pkg/core"
)

// Rows builds a core.Slice of model records sharing one column list.
func Rows(model string, columns []string, values ...[]any) core.Slice {
	records := make([]core.Record, len(values))
	for i, v := range values {
		records[i] = core.NewRow(model, columns, v)
	}
	return core.Slice{Name: model, Items: records}
}

// AwareSlice is an in-memory collection with association metadata.
type AwareSlice struct {
	core.Slice
	Assocs  []core.Association
	Related map[string]core.Collection
}

// Associations returns the declared associations of kind.
func (s AwareSlice) Associations(kind core.AssociationKind) []core.Association {
	return filterAssociations(s.Assocs, kind)
}

// Associated returns the related collection registered under a.Name.
func (s AwareSlice) Associated(_ context.Context, a core.Association) (core.Collection, error) {
	return lookupRelated(s.Related, a)
}

// Table is an in-memory stand-in for a store-backed collection. It pages
// rows by offset and counts fetches so tests can assert streaming.
type Table struct {
	Name    string
	Columns []string
	Data    [][]any
	// IDColumn is the identifier column, "id" when empty.
	IDColumn string
	// NoIdentifier marks a table whose rows have no identifier.
	NoIdentifier bool
	Assocs   []core.Association
	Related  map[string]core.Collection

	// FetchErr is returned by every fetch once set.
	FetchErr error

	PageFetches int
	IDFetches   int
}

// Model returns the model name.
func (t *Table) Model() string { return t.Name }

// Count returns the number of rows.
func (t *Table) Count(_ context.Context) (int64, error) { return int64(len(t.Data)), nil }

// AttributeNames returns the column names.
func (t *Table) AttributeNames() []string { return t.Columns }

// FetchPage returns up to limit records after the offset cursor.
func (t *Table) FetchPage(_ context.Context, after any, limit int) ([]core.Record, any, error) {
	t.PageFetches++
	if t.FetchErr != nil {
		return nil, nil, t.FetchErr
	}
	start, end := t.window(after, limit)
	records := make([]core.Record, 0, end-start)
	for _, row := range t.Data[start:end] {
		records = append(records, core.NewRow(t.Name, t.Columns, row))
	}
	return records, end, nil
}

// HasIdentifier reports whether rows have an identifier column.
func (t *Table) HasIdentifier() bool { return !t.NoIdentifier }

// FetchIDs returns up to limit identifiers after the offset cursor.
func (t *Table) FetchIDs(_ context.Context, after any, limit int) ([]any, any, error) {
	t.IDFetches++
	if t.FetchErr != nil {
		return nil, nil, t.FetchErr
	}
	if t.NoIdentifier {
		return nil, nil, fmt.Errorf("%s: %w", t.Name, core.ErrNoIdentifier)
	}
	idx := t.idIndex()
	start, end := t.window(after, limit)
	ids := make([]any, 0, end-start)
	for _, row := range t.Data[start:end] {
		ids = append(ids, row[idx])
	}
	return ids, end, nil
}

// Associations returns the declared associations of kind.
func (t *Table) Associations(kind core.AssociationKind) []core.Association {
	return filterAssociations(t.Assocs, kind)
}

// Associated returns the related collection registered under a.Name.
func (t *Table) Associated(_ context.Context, a core.Association) (core.Collection, error) {
	return lookupRelated(t.Related, a)
}

func (t *Table) window(after any, limit int) (int, int) {
	start, _ := after.(int)
	start = min(start, len(t.Data))
	return start, min(start+limit, len(t.Data))
}

func (t *Table) idIndex() int {
	name := t.IDColumn
	if name == "" {
		name = "id"
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	panic(fmt.Sprintf("testutil: table %s has no %s column", t.Name, name))
}

func filterAssociations(all []core.Association, kind core.AssociationKind) []core.Association {
	var out []core.Association
	for _, a := range all {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func lookupRelated(related map[string]core.Collection, a core.Association) (core.Collection, error) {
	c, ok := related[a.Name]
	if !ok {
		return nil, fmt.Errorf("no related collection for %s", a.Name)
	}
	return c, nil
}

var (
	_ core.Batchable        = (*Table)(nil)
	_ core.AssociationAware = (*Table)(nil)
	_ core.Lister           = AwareSlice{}
	_ core.AssociationAware = AwareSlice{}
)
