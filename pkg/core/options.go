package core

// DefaultBatchSize is the number of records fetched per batch.
const DefaultBatchSize = 1000

// DefaultExclude lists the attributes left out of dumps unless overridden.
var DefaultExclude = []string{"id", "created_at", "updated_at"}

// ImportOption is one extra keyword argument for the generated import call.
type ImportOption struct {
	Key   string
	Value string
}

// Options configures a single dump call.
type Options struct {
	// Exclude lists attribute names to leave out. Nil selects
	// DefaultExclude; an empty non-nil slice excludes nothing.
	Exclude []string

	// Import selects the bulk-import output shape.
	Import bool

	// ImportOptions are appended verbatim to the import call as key: value
	// pairs. Setting any implies Import.
	ImportOptions []ImportOption

	// References folds belongs-to foreign keys into reference tokens and
	// emits the self-id preamble for store-backed collections.
	References bool

	// IncludeHasAssociations also dumps the related collections of every
	// has-many and has-one association.
	IncludeHasAssociations bool

	// File is the output path. Empty means an in-memory buffer.
	File string

	// Append opens File in append mode instead of truncating it.
	Append bool

	// BatchSize overrides DefaultBatchSize when positive.
	BatchSize int
}

// IsImport reports whether the import output shape is selected.
func (o Options) IsImport() bool {
	return o.Import || len(o.ImportOptions) > 0
}

// ExcludeSet returns the effective exclusion set.
func (o Options) ExcludeSet() map[string]bool {
	names := o.Exclude
	if names == nil {
		names = DefaultExclude
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// EffectiveBatchSize returns BatchSize or the default.
func (o Options) EffectiveBatchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}
