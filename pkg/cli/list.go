package cli

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all users",
	Long: `List all users held by the remote store, in the order the store returns them.

Examples:
  userdesk list
  userdesk list --json
  userdesk list --url http://remote:3000`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	store := newStore()
	if err := store.Load(cmd.Context()); err != nil {
		return err
	}
	return printRecords(cmd.OutOrStdout(), store.Records())
}
