package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/getmockd/userdesk/pkg/record"
	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a user by ID",
	Long: `Delete a user by ID. A confirmation is asked unless --yes is given.

Examples:
  userdesk delete 3
  userdesk delete 3 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	if !deleteYes {
		if !interactive() {
			return fmt.Errorf("refusing to delete user %s without confirmation: pass --yes", id)
		}
		ok, err := confirm(fmt.Sprintf("Delete user %s?", id))
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return nil
		}
	}

	store := newStore()
	if err := store.Delete(cmd.Context(), record.StringID(id)); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return printResult(w, map[string]string{"deleted": id}, func() {
		fmt.Fprintf(w, "Deleted user %s\n", id)
	})
}
