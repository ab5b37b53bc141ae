package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/getmockd/userdesk/pkg/editsession"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new user",
	Long: `Add a new user. The remote store assigns the id.

Without --name or --email an interactive form is shown.

Examples:
  userdesk add
  userdesk add --name "Ann Lee" --email ann@example.com`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().String("name", "", "User name")
	addCmd.Flags().String("email", "", "User email")
}

func runAdd(cmd *cobra.Command, _ []string) error {
	sess := editsession.New(newStore(), editsession.WithLogger(logger))
	sess.OpenForCreate()

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
	return printRecord(cmd.OutOrStdout(), "Created", saved)
}
