package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ldellis/rolo/internal/cache"
	"github.com/ldellis/rolo/internal/config"
	"github.com/ldellis/rolo/internal/contacts"
)

// NewIgnoreCmd creates the ignore command: mark a contact pair as not
// duplicates so dedupe and merge leave them alone.
func NewIgnoreCmd() *cobra.Command {
	var (
		list   bool
		remove bool
	)

	cmd := &cobra.Command{
		Use:   "ignore [<id-a> <id-b>]",
		Short: "Mark a contact pair as not duplicates",
		Long: `Records that two contacts are different people. Ignored pairs are
skipped by dedupe and merge. The marks live in ignored.json next to
the config file; --remove takes a mark back, --list shows them all.`,
		Example: ignoreCmdExample,
		Args:    cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case list:
				return executeIgnoreList(cmd)
			case remove:
				return executeIgnoreRemove(cmd, args)
			default:
				return executeIgnore(cmd, args)
			}
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "show all ignored pairs")
	cmd.Flags().BoolVar(&remove, "remove", false, "stop ignoring the given pair")

	return cmd
}

const ignoreCmdExample = `  # These two are different people, never group them
  rolo ignore 4cf1b2aa-01 4cf1b2aa-02

  # Show every ignored pair
  rolo ignore --list

  # Let them be grouped again
  rolo ignore --remove 4cf1b2aa-01 4cf1b2aa-02`

// loadIgnoreStore opens the ignore store at its default location and
// loads its state.
func loadIgnoreStore() (*config.IgnoreStore, error) {
	store, err := config.NewIgnoreStore("")
	if err != nil {
		return nil, err
	}
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

func executeIgnore(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("pass exactly two contact IDs")
	}

	store, err := loadIgnoreStore()
	if err != nil {
		return err
	}

	record := config.IgnoreRecord{IDs: [2]string{args[0], args[1]}}
	record.Names = snapshotNames(record.IDs)
	if err := store.Ignore(record); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}

	cmd.Printf("Ignoring %s and %s.\n", describePair(record.IDs[0], record.Names[0]), describePair(record.IDs[1], record.Names[1]))
	return nil
}

func executeIgnoreRemove(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("pass exactly two contact IDs")
	}

	store, err := loadIgnoreStore()
	if err != nil {
		return err
	}

	if !store.Unignore(args[0], args[1]) {
		cmd.Println("Pair was not ignored.")
		return nil
	}
	if err := store.Save(); err != nil {
		return err
	}

	cmd.Println("Pair is no longer ignored.")
	return nil
}

func executeIgnoreList(cmd *cobra.Command) error {
	store, err := loadIgnoreStore()
	if err != nil {
		return err
	}

	records := store.Records()
	if len(records) == 0 {
		cmd.Println("No ignored pairs.")
		return nil
	}

	cmd.Printf("%d ignored pair(s):\n", len(records))
	for _, r := range records {
		cmd.Printf("  %s  |  %s  (since %s)\n",
			describePair(r.IDs[0], r.Names[0]),
			describePair(r.IDs[1], r.Names[1]),
			r.IgnoredAt.Format("2006-01-02"))
	}
	return nil
}

// snapshotNames resolves contact names from the local snapshot when
// one is available. Ignoring works offline; missing names only cost
// display niceness.
func snapshotNames(ids [2]string) [2]string {
	var names [2]string

	cacheDir, err := config.GetCacheDir()
	if err != nil {
		return names
	}
	snapshot, err := cache.NewSnapshot(cacheDir, cache.DefaultTTL)
	if err != nil {
		return names
	}
	list, err := snapshot.Load()
	if err != nil {
		return names
	}

	for _, c := range list {
		for i, id := range ids {
			if string(c.ID) == id {
				names[i] = c.Name
			}
		}
	}
	return names
}

// describePair renders an ID with its name when one is known.
func describePair(id, name string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s [%s]", name, id)
}

// dropIgnoredGroups filters ignored pairs out of duplicate groups,
// reporting how many duplicates were skipped.
func dropIgnoredGroups(groups []contacts.DuplicateGroup, store *config.IgnoreStore) ([]contacts.DuplicateGroup, int) {
	if store == nil || store.Count() == 0 {
		return groups, 0
	}

	before := 0
	for _, g := range groups {
		before += len(g.Duplicates)
	}

	filtered := contacts.FilterGroups(groups, func(a, b contacts.ID) bool {
		return store.IsIgnored(string(a), string(b))
	})

	after := 0
	for _, g := range filtered {
		after += len(g.Duplicates)
	}
	return filtered, before - after
}
