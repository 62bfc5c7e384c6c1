package cli

import (
	"github.com/spf13/cobra"

	"github.com/ldellis/rolo/internal/config"
	"github.com/ldellis/rolo/internal/contacts"
)

// NewDedupeCmd creates the dedupe command: list duplicate groups
// without changing anything.
func NewDedupeCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Find duplicate contacts",
		Long: `Lists duplicate groups without changing anything. Contacts sharing
an email address, or whose names are close enough under the configured
merge.name_distance threshold, land in the same group. Pairs marked
with the ignore command are skipped. Run merge to resolve the rest.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeDedupe(cmd, refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the snapshot cache")

	return cmd
}

func executeDedupe(cmd *cobra.Command, refresh bool) error {
	rt, err := buildRuntime(cmd, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	list, err := loadContacts(cmd.Context(), rt, refresh)
	if err != nil {
		return err
	}

	ignores, err := loadIgnoreStore()
	if err != nil {
		return err
	}

	groups := contacts.FindDuplicates(list, config.GetNameDistance())
	groups, skipped := dropIgnoredGroups(groups, ignores)
	if skipped > 0 {
		cmd.Printf("Skipped %d ignored pair(s).\n", skipped)
	}
	if len(groups) == 0 {
		cmd.Println("No duplicates found.")
		return nil
	}

	printDuplicateGroups(cmd.OutOrStdout(), groups)
	return nil
}
