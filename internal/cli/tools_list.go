package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sctci/internal/catalog"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect the tool catalogue",
	Long: `Inspect the catalogue of command-line entry points the verify stage
checks against the installed distribution.

The catalogue is an external contract: when the distribution's command set
changes, the built-in enumeration must be updated to match.

Examples:
  # List the catalogued commands
  sctci tools list
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued commands",
	Long: `List the commands the verify stage resolves, in verification order.

Examples:
  sctci tools list
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range catalog.Catalogue(nil) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsListCmd)
}
