package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/getmockd/userdesk/pkg/editsession"
	"github.com/getmockd/userdesk/pkg/record"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an existing user",
	Long: `Edit an existing user. Only the fields given as flags change; without
--name or --email a form pre-filled with the current values is shown.

Examples:
  userdesk edit 3 --email ann@new.example.com
  userdesk edit 3`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().String("name", "", "New user name")
	editCmd.Flags().String("email", "", "New user email")
}

func runEdit(cmd *cobra.Command, args []string) error {
	store := newStore()
	if err := store.Load(cmd.Context()); err != nil {
		return err
	}
	rec, ok := store.Get(record.StringID(args[0]))
	if !ok {
		return notFoundError(args[0])
	}

	sess := editsession.New(store, editsession.WithLogger(logger))
	sess.OpenForEdit(rec)

	if err := fillDraft(cmd, sess); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			sess.Cancel()
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return nil
		}
		return err
	}

	saved, err := sess.Commit(cmd.Context())
	if err != nil {
		return err
	}
	return printRecord(cmd.OutOrStdout(), "Updated", saved)
}
