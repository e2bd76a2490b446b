package core

import "context"

// AssociationKind classifies a declared relationship.
type AssociationKind int

const (
	// BelongsTo references exactly one related record through a foreign key
	// on this record.
	BelongsTo AssociationKind = iota
	// HasMany is the inverse of a belongs-to on the related type.
	HasMany
	// HasOne is a has-many restricted to a single related record.
	HasOne
)

// String returns the string representation of AssociationKind.
func (k AssociationKind) String() string {
	switch k {
	case BelongsTo:
		return "belongs_to"
	case HasMany:
		return "has_many"
	case HasOne:
		return "has_one"
	default:
		return "unknown"
	}
}

// Association describes a relationship declared on a record type.
type Association struct {
	Kind AssociationKind

	// Name is the human-readable association name (e.g. "author").
	Name string

	// ForeignKey is the attribute holding the related id. For belongs-to it
	// lives on this type; for has-many/has-one it lives on the related type.
	ForeignKey string

	// Model is the related type name. Empty for polymorphic belongs-to.
	Model string

	// Table is the related store table, when the source is store-backed.
	Table string

	// Polymorphic marks a belongs-to whose related type varies per record.
	Polymorphic bool

	// ForeignType is the attribute holding the related type name for
	// polymorphic belongs-to associations.
	ForeignType string
}

// AssociationAware is implemented by collections whose type supports
// association introspection.
type AssociationAware interface {
	// Associations returns the associations of the given kind in
	// declaration order.
	Associations(kind AssociationKind) []Association

	// Associated returns the whole collection of the association's related
	// type (not only the records related to this collection).
	Associated(ctx context.Context, a Association) (Collection, error)
}
