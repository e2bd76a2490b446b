package commands

import (
	"log/slog"

	"github.com/leapstack-labs/seeddump/internal/cli/config"
	"github.com/leapstack-labs/seeddump/pkg/adapter"
	"github.com/leapstack-labs/seeddump/pkg/source"
	"github.com/spf13/cobra"

	// Register the built-in adapters.
	_ "github.com/leapstack-labs/seeddump/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/seeddump/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/seeddump/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/seeddump/pkg/adapters/sqlite"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Adapter adapter.Adapter
	Schema  *source.Schema
}

// NewCommandContext connects to the configured target and builds the schema.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	adp, err := adapter.Open(ctx, cfg.AdapterConfig(), logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("connected", slog.String("type", cfg.Target.Type), slog.String("database", cfg.Target.Database))

	cleanup := func() {
		if err := adp.Close(); err != nil {
			logger.Warn("failed to close connection", slog.String("error", err.Error()))
		}
	}

	return &CommandContext{
		Cfg:     cfg,
		Logger:  logger,
		Adapter: adp,
		Schema:  source.NewSchema(adp, cfg.SourceModels(), logger),
	}, cleanup, nil
}
