package cli

import (
	"fmt"

	"github.com/getmockd/userdesk/pkg/cli/internal/output"
	"github.com/getmockd/userdesk/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration",
	Long: `Show the effective configuration after merging defaults, config files,
environment variables and flags, and where each value came from.

Examples:
  userdesk config
  userdesk config --json`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if jsonOutput {
		sources := make(map[string]string, len(config.Keys))
		for _, key := range config.Keys {
			sources[key] = settings.Source(key)
		}
		return output.JSON(w, map[string]interface{}{
			"config":  settings,
			"sources": sources,
		})
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintln(w, "# Effective configuration")
	fmt.Fprint(w, string(data))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "# Sources")
	tw := output.Table(w)
	for _, key := range config.Keys {
		_, _ = fmt.Fprintf(tw, "# %s\t%s\n", key, settings.Source(key))
	}
	return tw.Flush()
}
