package commands

import (
	"context"
	"io"
	"strings"

	"github.com/leapstack-labs/seeddump/pkg/core"
	"github.com/leapstack-labs/seeddump/pkg/source"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List tables with their models and associations",
		Long: `List every table of the target with the model name it dumps as, its row
count, primary key and discovered associations.`,
		Example: `  seeddump tables --type sqlite --database blog.db

  # Machine readable
  seeddump tables -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(output); err != nil {
				return err
			}
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return renderTables(cmd.Context(), cmd.OutOrStdout(), cmdCtx.Schema, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: "+strings.Join(outputFormats, ", "))
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// tableInfo is one row of the tables listing.
type tableInfo struct {
	Table      string   `json:"table"`
	Model      string   `json:"model"`
	Rows       int64    `json:"rows"`
	PrimaryKey string   `json:"primary_key,omitempty"`
	BelongsTo  []string `json:"belongs_to,omitempty"`
	HasMany    []string `json:"has_many,omitempty"`
	HasOne     []string `json:"has_one,omitempty"`
}

func describeTables(ctx context.Context, schema *source.Schema) ([]tableInfo, error) {
	names, err := schema.Tables(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]tableInfo, 0, len(names))
	for _, name := range names {
		meta, err := schema.Metadata(ctx, name)
		if err != nil {
			return nil, err
		}
		assocs, err := schema.Associations(ctx, name)
		if err != nil {
			return nil, err
		}

		info := tableInfo{
			Table:      name,
			Model:      schema.ModelName(name),
			Rows:       meta.RowCount,
			PrimaryKey: meta.PrimaryKey,
		}
		for _, a := range assocs {
			switch a.Kind {
			case core.BelongsTo:
				info.BelongsTo = append(info.BelongsTo, a.Name)
			case core.HasOne:
				info.HasOne = append(info.HasOne, a.Name)
			default:
				info.HasMany = append(info.HasMany, a.Name)
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func renderTables(ctx context.Context, w io.Writer, schema *source.Schema, format string) error {
	infos, err := describeTables(ctx, schema)
	if err != nil {
		return err
	}

	t := tabular{
		Header:  []string{"Table", "Model", "Rows", "Primary Key", "Belongs To", "Has Many / One"},
		Noun:    "tables",
		Records: infos,
	}
	for _, info := range infos {
		pk := info.PrimaryKey
		if pk == "" {
			pk = "-"
		}
		has := append([]string{}, info.HasMany...)
		for _, name := range info.HasOne {
			has = append(has, name+" (one)")
		}
		t.Rows = append(t.Rows, []any{info.Table, info.Model, info.Rows, pk, strings.Join(info.BelongsTo, ", "), strings.Join(has, ", ")})
	}
	return renderOutput(w, format, t)
}
