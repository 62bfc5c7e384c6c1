package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/engine"
)

// NewRemoveCmd creates the remove command: delete contacts by ID or
// clear the whole address book.
func NewRemoveCmd() *cobra.Command {
	var all bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove [id...]",
		Short: "Remove contacts",
		Long: `Removes the given contacts from the store, or the whole address book
with --all. A confirmation prompt guards the deletion unless --yes is
passed; off-terminal runs decline without --yes.`,
		Example: `  # Remove two contacts, confirming first
  rolo remove 7f3c09a2 b51d44c7

  # Clear everything without a prompt
  rolo remove --all --yes`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRemove(cmd, args, all, yes)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "remove every contact")
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")

	return cmd
}

func executeRemove(cmd *cobra.Command, args []string, all, yes bool) error {
	if all && len(args) > 0 {
		return errors.New("--all cannot be combined with explicit IDs")
	}
	if !all && len(args) == 0 {
		return errors.New("nothing to remove: pass contact IDs or --all")
	}

	rt, err := buildRuntime(cmd, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	ids := make([]contacts.ID, 0, len(args))
	for _, arg := range args {
		ids = append(ids, contacts.ID(arg))
	}

	return rt.Engine.Remove(cmd.Context(), engine.RemoveRequest{
		IDs:     ids,
		All:     all,
		Confirm: !yes,
	})
}
