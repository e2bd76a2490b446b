package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/seeddump/internal/cli/config"
	"github.com/leapstack-labs/seeddump/pkg/core"
	"github.com/leapstack-labs/seeddump/pkg/source"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [table...]",
		Short: "Print discovered models as seeddump.yaml configuration",
		Long: `Print the model name and primary key of each table in the models: shape
of seeddump.yaml, with the discovered associations as comments. Paste the
output into the config file and edit it to rename models or declare
polymorphic and has-one associations.`,
		Example: `  seeddump schema users posts > models.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return writeSchema(cmd.Context(), cmd.OutOrStdout(), cmdCtx.Schema, cmdCtx.Cfg, args)
		},
	}
}

type schemaDoc struct {
	Models map[string]config.ModelConfig `yaml:"models"`
}

func writeSchema(ctx context.Context, w io.Writer, schema *source.Schema, cfg *config.Config, tables []string) error {
	if len(tables) == 0 {
		var err error
		if tables, err = schema.Tables(ctx); err != nil {
			return err
		}
	}

	doc := schemaDoc{Models: make(map[string]config.ModelConfig, len(tables))}
	comments := make(map[string]string, len(tables))
	for _, name := range tables {
		meta, err := schema.Metadata(ctx, name)
		if err != nil {
			return err
		}
		assocs, err := schema.Associations(ctx, name)
		if err != nil {
			return err
		}

		m := cfg.Models[name]
		m.Name = schema.ModelName(name)
		if m.PrimaryKey == "" {
			m.PrimaryKey = meta.PrimaryKey
		}
		doc.Models[name] = m
		comments[name] = describeAssociations(assocs)
	}

	var node yaml.Node
	if err := node.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	annotate(&node, comments)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	return enc.Close()
}

// annotate attaches the association comments to the table keys under
// models.
func annotate(doc *yaml.Node, comments map[string]string) {
	if doc.Kind != yaml.MappingNode || len(doc.Content) < 2 {
		return
	}
	models := doc.Content[1]
	for i := 0; i+1 < len(models.Content); i += 2 {
		key := models.Content[i]
		if c := comments[key.Value]; c != "" {
			key.HeadComment = c
		}
	}
}

// describeAssociations renders one "# kind: a, b" line per association kind.
func describeAssociations(assocs []core.Association) string {
	byKind := map[core.AssociationKind][]string{}
	for _, a := range assocs {
		name := a.Name
		if a.Polymorphic {
			name += " (polymorphic)"
		}
		byKind[a.Kind] = append(byKind[a.Kind], name)
	}

	var lines []string
	for _, kind := range []core.AssociationKind{core.BelongsTo, core.HasMany, core.HasOne} {
		if names := byKind[kind]; len(names) > 0 {
			lines = append(lines, fmt.Sprintf("# %s: %s", kind, strings.Join(names, ", ")))
		}
	}
	return strings.Join(lines, "\n")
}
