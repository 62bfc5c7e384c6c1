package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ldellis/rolo/internal/config"
	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/engine"
)

// NewMergeCmd creates the merge command: resolve every duplicate
// group in one concurrent batch.
func NewMergeCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge duplicate contacts",
		Long: `Finds duplicate groups and resolves each one: the survivor absorbs
the duplicates' email addresses and cards, then the duplicates are
removed. Groups are processed concurrently; one group's failure never
stops the others. Ignored pairs are skipped. Run dedupe first to
preview the groups.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeMerge(cmd, refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the snapshot cache")

	return cmd
}

func executeMerge(cmd *cobra.Command, refresh bool) error {
	ctx := cmd.Context()

	rt, err := buildRuntime(cmd, runtimeOptions{Progress: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	list, err := loadContacts(ctx, rt, refresh)
	if err != nil {
		return err
	}

	ignores, err := loadIgnoreStore()
	if err != nil {
		return err
	}

	dupGroups := contacts.FindDuplicates(list, config.GetNameDistance())
	dupGroups, skipped := dropIgnoredGroups(dupGroups, ignores)
	if skipped > 0 {
		cmd.Printf("Skipped %d ignored pair(s).\n", skipped)
	}
	if len(dupGroups) == 0 {
		cmd.Println("No duplicates found.")
		return nil
	}

	groups := make(map[engine.GroupKey]engine.MergeGroup, len(dupGroups))
	for _, g := range dupGroups {
		survivor := contacts.MergedSurvivor(g)
		groups[engine.GroupKey(survivor.ID)] = engine.MergeGroup{
			Update: &survivor,
			Remove: contacts.IDsOf(g.Duplicates),
		}
	}

	summary, err := rt.Engine.Merge(ctx, groups)
	printMergeSummary(cmd.OutOrStdout(), len(summary.Updated), len(summary.Removed), summary.Errors)
	if err != nil {
		return err
	}
	if len(summary.Errors) > 0 {
		return fmt.Errorf("%d merge operation(s) failed", len(summary.Errors))
	}
	return nil
}
