package dump

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/seeddump/pkg/core"
	"github.com/leapstack-labs/seeddump/pkg/literal"
)

// statementSeparator joins statements within a batch and follows every
// batch but the last, so batches compose into one comma-separated list.
const (
	statementSeparator = ",\n  "
	fragmentSeparator  = ", "
)

// assembler writes one collection's statements to a sink.
type assembler struct {
	cfg    config
	out    *stickyWriter
	logger *slog.Logger
}

// plan holds the per-collection facts shared by every record.
type plan struct {
	belongsTo []core.Association
	consumed  map[string]bool
}

func (a *assembler) plan(c core.Collection) plan {
	p := plan{consumed: map[string]bool{}}
	if !a.cfg.references {
		return p
	}
	aware, ok := c.(core.AssociationAware)
	if !ok {
		return p
	}
	p.belongsTo = aware.Associations(core.BelongsTo)
	for _, assoc := range p.belongsTo {
		for _, name := range consumedAttributes(assoc) {
			p.consumed[name] = true
		}
	}
	return p
}

// write emits the full statement for c and returns the number of records.
func (a *assembler) write(ctx context.Context, c core.Collection) (int, error) {
	p := a.plan(c)

	if _, ok := c.(core.Batchable); ok && a.cfg.references && hasIdentifier(c) {
		if err := a.writePreamble(ctx, c); err != nil {
			return 0, err
		}
	}

	a.out.write(c.Model(), ".", a.cfg.method(), "(")
	if a.cfg.importMode {
		a.out.write(a.header(c, p), ", ")
	}
	a.out.write("[\n  ")

	it, err := Enumerate(c, a.cfg.batchSize, false)
	if err != nil {
		return 0, err
	}

	count := 0
	for it.Next(ctx) {
		batch := it.Batch()
		statements := make([]string, len(batch.Records))
		for i, rec := range batch.Records {
			stmt, err := a.statement(rec, p)
			if err != nil {
				return count, err
			}
			statements[i] = stmt
		}

		a.out.write(strings.Join(statements, statementSeparator))
		if !batch.Last {
			a.out.write(statementSeparator)
		}
		if a.out.err != nil {
			return count, a.out.err
		}

		count += len(batch.Records)
		a.logger.Debug("wrote batch", slog.String("model", c.Model()), slog.Int("records", len(batch.Records)), slog.Bool("last", batch.Last))
	}
	if err := it.Err(); err != nil {
		return count, err
	}

	a.out.write("\n]", a.importSuffix(), ")\n")
	return count, a.out.err
}

// hasIdentifier reports whether c can list identifiers for a preamble.
func hasIdentifier(c core.Collection) bool {
	if id, ok := c.(core.Identified); ok {
		return id.HasIdentifier()
	}
	return true
}

// writePreamble emits "(<tok>, <tok>, ...) = " listing a reference token
// for every record of c, gathered by a separate identifiers-only pass.
func (a *assembler) writePreamble(ctx context.Context, c core.Collection) error {
	it, err := Enumerate(c, a.cfg.batchSize, true)
	if err != nil {
		return err
	}

	var tokens []string
	for it.Next(ctx) {
		for _, id := range it.Batch().IDs {
			tokens = append(tokens, referenceToken(c.Model(), id))
		}
	}
	if err := it.Err(); err != nil {
		return err
	}

	a.out.write("(", strings.Join(tokens, fragmentSeparator), ") = ")
	return a.out.err
}

// statement renders one record as "{...}" or "[...]".
func (a *assembler) statement(rec core.Record, p plan) (string, error) {
	fragments := make([]string, 0, len(p.belongsTo)+len(rec.AttributeNames()))

	for _, assoc := range p.belongsTo {
		ref, err := resolveReference(rec, assoc, a.cfg.importMode)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, ref)
	}

	for _, name := range rec.AttributeNames() {
		if a.cfg.exclude[name] || p.consumed[name] {
			continue
		}
		v, err := rec.Attribute(name)
		if err != nil {
			return "", err
		}
		if a.cfg.importMode {
			fragments = append(fragments, literal.Encode(v))
		} else {
			fragments = append(fragments, label(name)+" "+literal.Encode(v))
		}
	}

	open, closing := "{", "}"
	if a.cfg.importMode {
		open, closing = "[", "]"
	}
	return open + strings.Join(fragments, fragmentSeparator) + closing, nil
}

// header lists the import column symbols: belongs-to names first, then
// every remaining attribute, mirroring the order statement emits values.
func (a *assembler) header(c core.Collection, p plan) string {
	names := make([]string, 0, len(p.belongsTo)+len(c.AttributeNames()))
	for _, assoc := range p.belongsTo {
		names = append(names, literal.Symbol(assoc.Name))
	}
	for _, name := range c.AttributeNames() {
		if a.cfg.exclude[name] || p.consumed[name] {
			continue
		}
		names = append(names, literal.Symbol(name))
	}
	return "[" + strings.Join(names, fragmentSeparator) + "]"
}

func (a *assembler) importSuffix() string {
	if !a.cfg.importMode || len(a.cfg.importOptions) == 0 {
		return ""
	}
	parts := make([]string, len(a.cfg.importOptions))
	for i, opt := range a.cfg.importOptions {
		parts[i] = opt.Key + ": " + opt.Value
	}
	return fragmentSeparator + strings.Join(parts, fragmentSeparator)
}
