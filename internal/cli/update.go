package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/logging"
)

// NewUpdateCmd creates the update command: change a contact's name or
// email addresses.
func NewUpdateCmd() *cobra.Command {
	var name string
	var emails []string
	var metadataOnly bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a contact",
		Long: `Updates one contact. The current record is fetched first, the given
fields replace their counterparts, and the result is written back.
With --metadata-only the store skips card re-encryption.`,
		Example: `  rolo update 7f3c09a2 --name "Ada King"
  rolo update 7f3c09a2 --email ada@example.com --metadata-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeUpdate(cmd, args[0], name, emails, metadataOnly)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new contact name")
	cmd.Flags().StringArrayVar(&emails, "email", nil, "replacement email address (repeatable)")
	cmd.Flags().BoolVar(&metadataOnly, "metadata-only", false, "skip card re-encryption on the server")

	return cmd
}

func executeUpdate(cmd *cobra.Command, id, name string, emails []string, metadataOnly bool) error {
	if name == "" && len(emails) == 0 {
		return errors.New("nothing to update: pass --name or --email")
	}

	ctx := cmd.Context()

	rt, err := buildRuntime(cmd, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	contact, err := findContact(ctx, rt, contacts.ID(id))
	if err != nil {
		return err
	}
	if name != "" {
		contact.Name = name
	}
	if len(emails) > 0 {
		contact.Emails = emails
	}
	if err := contact.Validate(); err != nil {
		return err
	}

	update := rt.Engine.Update
	if metadataOnly {
		update = rt.Engine.UpdateUnencrypted
	}
	result, err := update(ctx, contact, nil)
	if err != nil {
		return err
	}

	// The engine's success notification already reported the update;
	// only the email index needs refreshing here.
	if err := rt.Emails.Put(result.Contact); err != nil {
		log := logging.FromContext(ctx)
		log.Warn().Ctx(ctx).
			Str("component", "cli").
			Err(err).
			Msg("email index update failed")
	}
	return nil
}
