// Package cli provides the command-line interface for seeddump.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/seeddump/internal/cli/commands"
	"github.com/leapstack-labs/seeddump/internal/cli/config"
	"github.com/leapstack-labs/seeddump/pkg/adapter"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// skipConfig lists commands that run without loading configuration.
var skipConfig = map[string]bool{
	"help":       true,
	"completion": true,
	"__complete": true,
	"version":    true,
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile, targetFlag string

	rootCmd := &cobra.Command{
		Use:   "seeddump",
		Short: "seeddump - dump database rows as Ruby seed statements",
		Long: `seeddump reads rows from a SQL database and writes them as Ruby seed
statements (Model.create! or Model.import calls) that recreate the data.

Foreign keys can be folded into named references, and the tables that
reference a dumped table can be dumped along with it.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipConfig[cmd.Name()] {
				return nil
			}

			loaded, err := config.LoadConfig(cfgFile, targetFlag, cmd.Flags())
			if err != nil {
				return err
			}

			logger := newLogger(cmd, loaded.Verbose)
			if loaded.File != "" {
				logger.Debug("using config file", slog.String("path", loaded.File))
			}
			if targetFlag != "" {
				logger.Debug("using target", slog.String("target", targetFlag))
			}

			cmd.SetContext(config.WithContext(cmd.Context(), loaded.Config, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: seeddump.yaml, searched upward)")
	pf.StringVarP(&targetFlag, "target", "t", "", "Environment whose target to use (from environments in the config)")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.String("type", "", "Database type (duckdb|postgres|sqlite|mysql)")
	pf.String("database", "", "Database name or file path")
	pf.String("host", "", "Database host")
	pf.Int("port", 0, "Database port")
	pf.String("user", "", "Database user")
	pf.String("password", "", "Database password")
	pf.String("schema", "", "Database schema")

	_ = rootCmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.ListAdapters(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewDumpCommand())
	rootCmd.AddCommand(commands.NewTablesCommand())
	rootCmd.AddCommand(commands.NewSchemaCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger builds the CLI logger: text records on stderr, debug level
// when verbose.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for seeddump.

To load completions:

Bash:
  $ source <(seeddump completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ seeddump completion bash > /etc/bash_completion.d/seeddump
  # macOS:
  $ seeddump completion bash > $(brew --prefix)/etc/bash_completion.d/seeddump

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ seeddump completion zsh > "${fpath[1]}/_seeddump"

Fish:
  $ seeddump completion fish | source

  # To load completions for each session, execute once:
  $ seeddump completion fish > ~/.config/fish/completions/seeddump.fish

PowerShell:
  PS> seeddump completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
