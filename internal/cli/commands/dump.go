package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/seeddump/pkg/core"
	"github.com/leapstack-labs/seeddump/pkg/dump"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var errNoTables = errors.New("no tables given\nHint: Name the tables to dump or pass --all")

// dumpFlags holds the flags that only the dump command reads directly.
// The remaining dump flags flow through the config.
type dumpFlags struct {
	all           bool
	importOptions []string
}

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	f := &dumpFlags{}

	cmd := &cobra.Command{
		Use:   "dump [table...]",
		Short: "Dump table rows as Ruby seed statements",
		Long: `Dump the rows of one or more tables as Ruby seed statements.

Each table becomes one Model.create!([...]) call, or one Model.import([...])
call with --import. With --references, foreign keys are replaced by named
references and every statement is prefixed with the reference names of the
records it creates.

Without --file or --out-dir the statements are written to stdout.`,
		Example: `  # Dump the users table to stdout
  seeddump dump users --type sqlite --database blog.db

  # Dump posts with references, and the tables that reference posts
  seeddump dump posts --references --include-has-associations

  # Bulk import shape with extra import options
  seeddump dump users --import --import-option validate=false

  # Dump every table into seeds/<table>.rb, four at a time
  seeddump dump --all --out-dir seeds --jobs 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, args, f)
		},
	}

	flags := cmd.Flags()
	flags.StringP("file", "f", "", "Write to this file instead of stdout")
	flags.Bool("append", false, "Append to --file instead of overwriting it")
	flags.Bool("import", false, "Emit Model.import calls instead of Model.create!")
	flags.StringArrayVar(&f.importOptions, "import-option", nil, "Extra import keyword argument as key=value (repeatable, implies --import)")
	flags.Bool("references", false, "Replace foreign keys with named references")
	flags.Bool("include-has-associations", false, "Also dump the tables that reference each dumped table")
	flags.StringSlice("exclude", nil, "Attributes to leave out (default: id,created_at,updated_at)")
	flags.Int("batch-size", 0, fmt.Sprintf("Rows fetched per batch (default %d)", core.DefaultBatchSize))
	flags.String("out-dir", "", "Write one <table>.rb file per table into this directory")
	flags.Int("jobs", 0, "Tables dumped concurrently with --out-dir")
	flags.BoolVar(&f.all, "all", false, "Dump every table")

	return cmd
}

func runDump(cmd *cobra.Command, args []string, f *dumpFlags) error {
	if len(args) == 0 && !f.all {
		return errNoTables
	}
	extra, err := parseImportOptions(f.importOptions)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	tables := args
	if f.all {
		if tables, err = cmdCtx.Schema.Tables(ctx); err != nil {
			return err
		}
	}

	options := func(table string) core.Options {
		opts := cmdCtx.Cfg.DumpOptions(table)
		opts.ImportOptions = append(opts.ImportOptions, extra...)
		return opts
	}
	dumper := dump.New(cmdCtx.Logger)

	if outDir := cmdCtx.Cfg.Dump.OutDir; outDir != "" {
		if err := os.MkdirAll(outDir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cmdCtx.Cfg.Jobs)
		for _, name := range tables {
			g.Go(func() error {
				table, err := cmdCtx.Schema.Table(gctx, name)
				if err != nil {
					return err
				}
				opts := options(name)
				opts.File = filepath.Join(outDir, name+".rb")
				if _, err := dumper.Dump(gctx, table, opts); err != nil {
					return fmt.Errorf("failed to dump %s: %w", name, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		cmdCtx.Logger.Info("dumped tables", slog.Int("tables", len(tables)), slog.String("dir", outDir))
		return nil
	}

	for i, name := range tables {
		table, err := cmdCtx.Schema.Table(ctx, name)
		if err != nil {
			return err
		}
		opts := options(name)
		// Later tables add to the file the first one created.
		if opts.File != "" && i > 0 {
			opts.Append = true
		}
		out, err := dumper.Dump(ctx, table, opts)
		if err != nil {
			return fmt.Errorf("failed to dump %s: %w", name, err)
		}
		if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	}
	return nil
}

// parseImportOptions parses key=value pairs, keeping their order.
func parseImportOptions(pairs []string) ([]core.ImportOption, error) {
	opts := make([]core.ImportOption, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("invalid import option %q: expected key=value", pair)
		}
		opts = append(opts, core.ImportOption{Key: key, Value: value})
	}
	return opts, nil
}
