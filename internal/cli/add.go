package cli

import (
	"github.com/spf13/cobra"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/logging"
)

// NewAddCmd creates the add command: create a single contact.
func NewAddCmd() *cobra.Command {
	var name string
	var emails []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a single contact",
		Example: `  rolo add --name "Ada Lovelace" --email ada@example.com
  rolo add --name "Charles Babbage" --email cb@example.com --email babbage@example.org`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeAdd(cmd, name, emails)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "contact name (required)")
	cmd.Flags().StringArrayVar(&emails, "email", nil, "email address (repeatable)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func executeAdd(cmd *cobra.Command, name string, emails []string) error {
	ctx := cmd.Context()

	rt, err := buildRuntime(cmd, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	created, err := rt.Engine.CreateSingular(ctx, contacts.New(name, emails...))
	if err != nil {
		return err
	}

	if err := rt.Emails.Put(created); err != nil {
		log := logging.FromContext(ctx)
		log.Warn().Ctx(ctx).
			Str("component", "cli").
			Err(err).
			Msg("email index update failed")
	}

	cmd.Printf("Created %s (%s)\n", created.Name, created.ID)
	return nil
}
