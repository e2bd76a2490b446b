package dump

import (
	"slices"

	"github.com/leapstack-labs/seeddump/pkg/core"
)

// config is the resolved, read-only form of core.Options for one call.
type config struct {
	exclude       map[string]bool
	importMode    bool
	importOptions []core.ImportOption
	references    bool
	includeHas    bool
	file          string
	appendMode    bool
	batchSize     int
}

func resolve(o core.Options) config {
	return config{
		exclude:       o.ExcludeSet(),
		importMode:    o.IsImport(),
		importOptions: slices.Clone(o.ImportOptions),
		references:    o.References,
		includeHas:    o.IncludeHasAssociations,
		file:          o.File,
		appendMode:    o.Append,
		batchSize:     o.EffectiveBatchSize(),
	}
}

// withReferences returns a copy of c with reference mode enabled.
func (c config) withReferences() config {
	c.references = true
	return c
}

func (c config) method() string {
	if c.importMode {
		return "import"
	}
	return "create!"
}
