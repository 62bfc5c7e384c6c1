package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ldellis/rolo/internal/config"
	"github.com/ldellis/rolo/internal/logging"
)

// setupLogging configures the global logger from the config file and
// the --log-level override, then attaches a trace-carrying logger to
// the command context.
func setupLogging(cmd *cobra.Command, levelOverride string) error {
	level := config.GetLogLevel()
	if levelOverride != "" {
		level = levelOverride
	}

	if err := config.InitLogger(level, config.GetLogFile() != ""); err != nil {
		return err
	}
	logger = logging.ComponentLogger(config.GetLogger(), "cli")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logging.WithContext(ctx, logger)
	cmd.SetContext(ctx)

	logger.Info().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")
	return nil
}
