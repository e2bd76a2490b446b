package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownAttribute is matched by errors returned when a record is asked
// for an attribute it does not have.
var ErrUnknownAttribute = errors.New("unknown attribute")

// ErrNoIdentifier is returned when identifiers are requested from a
// collection whose records have none.
var ErrNoIdentifier = errors.New("no primary key or id column")

// AttributeError reports a failed attribute lookup on a record.
type AttributeError struct {
	Model     string
	Attribute string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("%s has no attribute %q", e.Model, e.Attribute)
}

// Unwrap lets errors.Is match ErrUnknownAttribute.
func (e *AttributeError) Unwrap() error {
	return ErrUnknownAttribute
}

// Record is a read-only view over one stored row.
type Record interface {
	// Model returns the record's type name (e.g. "BlogPost").
	Model() string

	// AttributeNames returns attribute names in declaration order.
	AttributeNames() []string

	// Attribute returns the value of the named attribute.
	// Unknown names return an error matching ErrUnknownAttribute.
	Attribute(name string) (any, error)
}

// Collection is the minimal contract every record source satisfies.
// A collection must additionally implement Batchable or Lister to be dumped.
type Collection interface {
	// Model returns the type name of the records in the collection.
	Model() string

	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int64, error)

	// AttributeNames returns the attribute names shared by every record.
	AttributeNames() []string
}

// Batchable is implemented by collections that can fetch records page by
// page from a backing store.
type Batchable interface {
	Collection

	// FetchPage returns up to limit records following the cursor after
	// (nil for the first page) and the cursor for the next page.
	FetchPage(ctx context.Context, after any, limit int) ([]Record, any, error)

	// FetchIDs is the identifiers-only projection of FetchPage.
	FetchIDs(ctx context.Context, after any, limit int) ([]any, any, error)
}

// Identified is implemented by batchable collections whose records may have
// no identifier. A batchable collection that does not implement it is
// assumed to have one.
type Identified interface {
	HasIdentifier() bool
}

// Lister is implemented by fully materialized collections.
type Lister interface {
	Collection
	Records() []Record
}

// Batch is one bounded chunk of an enumeration.
type Batch struct {
	// Records is set for record enumerations.
	Records []Record
	// IDs is set for identifiers-only enumerations.
	IDs []any
	// Last is true exactly on the final batch.
	Last bool
}

// Len returns the number of elements in the batch.
func (b Batch) Len() int {
	if b.IDs != nil {
		return len(b.IDs)
	}
	return len(b.Records)
}

// Slice is an in-memory collection. The model name is taken from Name, or
// from the first record when Name is empty.
type Slice struct {
	Name  string
	Items []Record
}

// Model returns the model name of the slice.
func (s Slice) Model() string {
	if s.Name != "" || len(s.Items) == 0 {
		return s.Name
	}
	return s.Items[0].Model()
}

// Count returns the number of records.
func (s Slice) Count(_ context.Context) (int64, error) {
	return int64(len(s.Items)), nil
}

// AttributeNames returns the first record's attribute names.
func (s Slice) AttributeNames() []string {
	if len(s.Items) == 0 {
		return nil
	}
	return s.Items[0].AttributeNames()
}

// Records returns the records in order.
func (s Slice) Records() []Record {
	return s.Items
}

var _ Lister = Slice{}

// Row is a simple Record backed by parallel name/value slices.
type Row struct {
	ModelName string
	Names     []string
	Values    []any
}

// NewRow builds a Row from names and values. Extra values are ignored.
func NewRow(model string, names []string, values []any) *Row {
	return &Row{ModelName: model, Names: names, Values: values}
}

// Model returns the row's model name.
func (r *Row) Model() string { return r.ModelName }

// AttributeNames returns the column names.
func (r *Row) AttributeNames() []string { return r.Names }

// Attribute returns the named value.
func (r *Row) Attribute(name string) (any, error) {
	for i, n := range r.Names {
		if n == name {
			if i < len(r.Values) {
				return r.Values[i], nil
			}
			return nil, nil
		}
	}
	return nil, &AttributeError{Model: r.ModelName, Attribute: name}
}

var _ Record = (*Row)(nil)
