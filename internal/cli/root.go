// Package cli assembles the rolo command tree: it loads
// configuration, sets up logging, builds the batch engine with its
// adapters, and exposes the import, add, merge, dedupe, ignore,
// remove, and update commands.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ldellis/rolo/internal/config"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// RootFlags holds the persistent flags shared by every subcommand.
type RootFlags struct {
	ConfigPath string
	LogLevel   string
	StoreURL   string
}

// NewRootCmd creates the root cobra command for the rolo CLI. Its
// PersistentPreRunE loads the config file, applies flag overrides,
// and initializes logging before any subcommand runs.
func NewRootCmd(ver string) *cobra.Command {
	var flags RootFlags

	cmd := &cobra.Command{
		Use:     "rolo",
		Short:   "Contact batch tool",
		Long:    "rolo: batch import, merge, and clean up address-book contacts against a remote store",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadGlobalConfig(flags.ConfigPath); err != nil {
				return err
			}
			if flags.StoreURL != "" {
				config.GetGlobalConfig().Store.BaseURL = flags.StoreURL
			}
			return setupLogging(cmd, flags.LogLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "",
		"config file (default $ROLO_HOME/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "",
		"log level: trace, debug, info, warn, error (overrides config)")
	cmd.PersistentFlags().StringVar(&flags.StoreURL, "store-url", "",
		"contact store base URL (overrides config)")

	cmd.AddCommand(
		NewImportCmd(), NewAddCmd(), NewMergeCmd(), NewDedupeCmd(),
		NewIgnoreCmd(), NewRemoveCmd(), NewUpdateCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Import contacts from a JSON file, sealing card payloads first
  rolo import contacts.json

  # Add a single contact
  rolo add --name "Ada Lovelace" --email ada@example.com

  # List duplicate groups without changing anything
  rolo dedupe

  # Merge duplicate groups
  rolo merge

  # Remove two contacts by ID
  rolo remove 7f3c09a2 b51d44c7

  # Clear the whole address book without a prompt
  rolo remove --all --yes`
