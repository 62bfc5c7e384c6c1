package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/engine"
	"github.com/ldellis/rolo/internal/logging"
)

// NewImportCmd creates the import command: bulk-create contacts from
// a JSON file, sealing card payloads on the way in.
func NewImportCmd() *cobra.Command {
	var noSeal bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Bulk-import contacts from a JSON file",
		Long: `Creates every contact from the given JSON file in the remote store.

The file holds an array of contacts; IDs are generated when missing.
Card payloads are sealed with the configured key before upload. On a
terminal a progress bar tracks the upload; Esc cancels the remaining
work without undoing what already landed.`,
		Example: importCmdExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeImport(cmd, args[0], noSeal)
		},
	}

	cmd.Flags().BoolVar(&noSeal, "no-seal", false, "upload card payloads without sealing them")

	return cmd
}

const importCmdExample = `  # Import with sealed cards (requires seal.key in the config)
  rolo import contacts.json

  # Import without touching card payloads
  rolo import --no-seal contacts.json`

// readImportFile parses an import file: a JSON array of contacts.
// Missing IDs are generated; every contact is validated before any
// remote call is made.
func readImportFile(path string) ([]contacts.Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}

	var list []contacts.Contact
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing import file %s: %w", path, err)
	}

	for i := range list {
		if list[i].ID == "" {
			list[i].ID = contacts.ID(uuid.NewString())
		}
		if err := list[i].Validate(); err != nil {
			return nil, fmt.Errorf("contact %d: %w", i+1, err)
		}
	}
	return list, nil
}

func executeImport(cmd *cobra.Command, path string, noSeal bool) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	list, err := readImportFile(path)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		cmd.Println("Nothing to import.")
		return nil
	}

	rt, err := buildRuntime(cmd, runtimeOptions{Sealing: !noSeal, Progress: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	log.Debug().Ctx(ctx).
		Str("component", "cli").
		Str("operation", "import").
		Str("file", path).
		Int("contacts", len(list)).
		Bool("sealed", !noSeal).
		Msg("starting import")

	outcome, err := rt.Engine.CreateBatch(ctx, engine.CreateBatchRequest{
		Contacts: list,
		Mode:     engine.ModeImport,
		State:    "cli_import",
	})
	if err != nil {
		return err
	}

	// A cancelled import resolves with the zero outcome.
	if outcome.Total == 0 {
		cmd.Println("Import cancelled.")
		return nil
	}

	if len(outcome.Created) > 0 {
		if err := rt.Emails.Put(outcome.Created...); err != nil {
			log.Warn().Ctx(ctx).
				Str("component", "cli").
				Err(err).
				Msg("email index update failed")
		}
	}

	cmd.Printf("Imported %d of %d contacts.\n", len(outcome.Created), outcome.Total)
	for _, itemErr := range outcome.Errors {
		cmd.Printf("  failed: %s\n", itemErr.Error())
	}
	if len(outcome.Errors) > 0 {
		return fmt.Errorf("%d of %d contacts failed", len(outcome.Errors), outcome.Total)
	}
	return nil
}
