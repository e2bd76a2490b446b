package dump

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/seeddump/pkg/core"
)

// Dumper serializes collections. The zero value is not usable; use New.
type Dumper struct {
	logger *slog.Logger
}

// New creates a Dumper. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Dumper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dumper{logger: logger}
}

// Dump serializes c with a discard logger. See Dumper.Dump.
func Dump(ctx context.Context, c core.Collection, opts core.Options) (string, error) {
	return New(nil).Dump(ctx, c, opts)
}

// job is one entry of the dump work queue.
type job struct {
	coll core.Collection
	cfg  config
}

// Dump writes the seed statements for c and, when requested, for the
// related collections of its has-many and has-one associations.
//
// An empty collection is a no-op: nothing is opened or written and "" is
// returned. Otherwise the text is returned for in-memory dumps and "" when
// opts.File is set.
func (d *Dumper) Dump(ctx context.Context, c core.Collection, opts core.Options) (out string, err error) {
	n, err := c.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count %s records: %w", c.Model(), err)
	}
	if n == 0 {
		d.logger.Debug("nothing to dump", slog.String("model", c.Model()))
		return "", nil
	}

	cfg := resolve(opts)

	queue, err := d.queue(ctx, c, cfg)
	if err != nil {
		return "", err
	}

	s, err := openSink(cfg.file, cfg.appendMode)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
			out = ""
		}
	}()

	w := &stickyWriter{s: s}
	total := 0
	for i, j := range queue {
		if i > 0 {
			size, err := j.coll.Count(ctx)
			if err != nil {
				return "", fmt.Errorf("failed to count %s records: %w", j.coll.Model(), err)
			}
			if size == 0 {
				continue
			}
		}

		d.logger.Info("dumping records",
			slog.String("model", j.coll.Model()),
			slog.String("method", j.cfg.method()),
			slog.Bool("references", j.cfg.references))

		asm := &assembler{cfg: j.cfg, out: w, logger: d.logger}
		written, err := asm.write(ctx, j.coll)
		if err != nil {
			return "", fmt.Errorf("failed to dump %s: %w", j.coll.Model(), err)
		}
		total += written
	}

	d.logger.Info("dump complete", slog.Int("records", total), slog.Int64("bytes", w.n), slog.String("file", cfg.file))
	return s.Text(), nil
}

// queue builds the work queue: the primary collection, then one entry per
// has-many and has-one association in reference mode. Queued related
// collections are not expanded further.
func (d *Dumper) queue(ctx context.Context, c core.Collection, cfg config) ([]job, error) {
	queue := []job{{coll: c, cfg: cfg}}
	if !cfg.includeHas {
		return queue, nil
	}
	aware, ok := c.(core.AssociationAware)
	if !ok {
		return queue, nil
	}

	for _, kind := range []core.AssociationKind{core.HasMany, core.HasOne} {
		for _, a := range aware.Associations(kind) {
			related, err := aware.Associated(ctx, a)
			if err != nil {
				return nil, fmt.Errorf("failed to load %s association %s.%s: %w", kind, c.Model(), a.Name, err)
			}
			d.logger.Debug("queued association", slog.String("model", c.Model()), slog.String("association", a.Name), slog.String("kind", kind.String()))
			queue = append(queue, job{coll: related, cfg: cfg.withReferences()})
		}
	}
	return queue, nil
}
