package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/seeddump/internal/cli/config"
	"github.com/leapstack-labs/seeddump/internal/cli/output"
	"github.com/leapstack-labs/seeddump/pkg/core"
	"github.com/leapstack-labs/seeddump/pkg/source"
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the target and model configuration before dumping",
		Long: `Inspect the target database and the models configuration for things that
change how tables are dumped:
- tables without a single-column primary key (offset paging, no references)
- model overrides naming unknown tables or columns
- polymorphic declarations whose columns are missing
- has-one declarations for tables that do not reference the parent`,
		Example: `  # Run the checks
  seeddump doctor

  # Output as JSON
  seeddump doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "text", "Output format: text, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary      TargetSummary `json:"summary"`
	HealthChecks []HealthCheck `json:"health_checks"`
	Score        int           `json:"score"`
	IssueCount   int           `json:"issue_count"`
}

// TargetSummary contains target-level statistics.
type TargetSummary struct {
	Tables       int   `json:"tables"`
	Rows         int64 `json:"rows"`
	ForeignKeys  int   `json:"foreign_keys"`
	Associations int   `json:"associations"`
}

// HealthCheck represents a single check result.
type HealthCheck struct {
	RuleID     string   `json:"rule_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	if opts.Format != "text" && opts.Format != "json" {
		return fmt.Errorf("unknown format %q: expected text or json", opts.Format)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	fks, err := cmdCtx.Adapter.ForeignKeys(cmd.Context())
	if err != nil {
		return err
	}
	out, err := diagnose(cmd.Context(), cmdCtx.Schema, fks, cmdCtx.Cfg.Models)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	renderDoctorText(cmd.OutOrStdout(), out)
	return nil
}

// diagnose runs every check against the schema and model overrides.
func diagnose(ctx context.Context, schema *source.Schema, fks []core.ForeignKey, models map[string]config.ModelConfig) (*DoctorOutput, error) {
	tables, err := schema.Tables(ctx)
	if err != nil {
		return nil, err
	}

	summary := TargetSummary{Tables: len(tables), ForeignKeys: len(fks)}
	metas := make(map[string]*core.TableMetadata, len(tables))
	for _, name := range tables {
		meta, err := schema.Metadata(ctx, name)
		if err != nil {
			return nil, err
		}
		metas[name] = meta
		summary.Rows += meta.RowCount

		assocs, err := schema.Associations(ctx, name)
		if err != nil {
			return nil, err
		}
		summary.Associations += len(assocs)
	}

	var noKey, unknownModels, badKeys, badPolymorphic, badHasOne, selfRefs []string
	for _, name := range tables {
		if metas[name].PrimaryKey == "" && models[name].PrimaryKey == "" {
			noKey = append(noKey, name)
		}
	}
	for _, fk := range fks {
		if fk.Table == fk.ReferencedTable {
			selfRefs = append(selfRefs, fmt.Sprintf("%s.%s", fk.Table, fk.Column))
		}
	}

	for _, name := range slices.Sorted(maps.Keys(models)) {
		m := models[name]
		meta, ok := metas[name]
		if !ok {
			unknownModels = append(unknownModels, name)
			continue
		}
		columns := meta.ColumnNames()

		if m.PrimaryKey != "" && !slices.Contains(columns, m.PrimaryKey) {
			badKeys = append(badKeys, fmt.Sprintf("%s: no column %s", name, m.PrimaryKey))
		}
		for _, p := range m.Polymorphic {
			fk, typ := p.ForeignKey, p.ForeignType
			if fk == "" {
				fk = p.Name + "_id"
			}
			if typ == "" {
				typ = p.Name + "_type"
			}
			for _, col := range []string{fk, typ} {
				if !slices.Contains(columns, col) {
					badPolymorphic = append(badPolymorphic, fmt.Sprintf("%s.%s: no column %s", name, p.Name, col))
				}
			}
		}
		for _, child := range m.HasOne {
			if !slices.ContainsFunc(fks, func(fk core.ForeignKey) bool {
				return fk.Table == child && fk.ReferencedTable == name
			}) {
				badHasOne = append(badHasOne, fmt.Sprintf("%s: %s has no foreign key to it", name, child))
			}
		}
	}

	checks := []HealthCheck{
		newCheck("DR01", "Tables have a single-column primary key", "paging", "warn", noKey),
		newCheck("DR02", "Self references are not followed", "references", "warn", selfRefs),
		newCheck("DR03", "Configured models name existing tables", "models", "error", unknownModels),
		newCheck("DR04", "Primary key overrides name existing columns", "models", "error", badKeys),
		newCheck("DR05", "Polymorphic columns exist", "models", "error", badPolymorphic),
		newCheck("DR06", "Has-one tables reference their parent", "models", "error", badHasOne),
	}
	sort.SliceStable(checks, func(i, j int) bool {
		return checks[i].Group < checks[j].Group
	})

	out := &DoctorOutput{Summary: summary, HealthChecks: checks}
	for _, c := range checks {
		out.IssueCount += c.IssueCount
	}
	out.Score = calculateHealthScore(checks, len(tables))
	return out, nil
}

func newCheck(id, name, group, failStatus string, details []string) HealthCheck {
	status := "pass"
	if len(details) > 0 {
		status = failStatus
	}
	return HealthCheck{
		RuleID:     id,
		Name:       name,
		Group:      group,
		Status:     status,
		IssueCount: len(details),
		Details:    details,
	}
}

// calculateHealthScore computes a health score from 0-100.
// Errors count double, and each issue weighs less as the table count grows.
func calculateHealthScore(checks []HealthCheck, tableCount int) int {
	score := 100.0

	basePenalty := 5.0
	switch {
	case tableCount > 100:
		basePenalty = 1.0
	case tableCount > 50:
		basePenalty = 2.0
	case tableCount > 10:
		basePenalty = 3.0
	}

	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= float64(check.IssueCount) * basePenalty * 2
		case "warn":
			score -= float64(check.IssueCount) * basePenalty
		}
	}

	return int(max(0, min(100, score)))
}

func renderDoctorText(w io.Writer, out *DoctorOutput) {
	r := output.NewRenderer(w)
	styles := r.Styles()

	r.Println(styles.Header.Render("seeddump target report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Printf("Tables: %d | Rows: %d | Foreign keys: %d | Associations: %d\n\n",
		out.Summary.Tables, out.Summary.Rows, out.Summary.ForeignKeys, out.Summary.Associations)

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.Success.Render("[ok]")
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("[!!]")
		case "error":
			icon = styles.Error.Render("[xx]")
		}
		status := fmt.Sprintf("%s %s: %s", icon, check.RuleID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
}
