package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sctci/internal/stage"
)

var stagesListQuiet bool
var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Inspect pipeline stages",
	Long: `Inspect the stages registered in this build.

The run command executes stages in the fixed pipeline order (see
"sctci run --help"); this command group only describes them.

Examples:
  # List all registered stages
  sctci stages list
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var stagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered stages",
	Long: `List all stages currently registered in this build.

Stages are sorted by stage ID; execution order during a run is the
--stages selector, not this listing.

Examples:
  sctci stages list
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range stage.List() {
			if stagesListQuiet {
				fmt.Fprintln(cmd.OutOrStdout(), s.ID())
			} else {
				printStage(cmd.OutOrStdout(), s)
			}
		}
		return nil
	},
}

func printStage(w io.Writer, s stage.Stage) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "STAGE: %s\n", s.ID())
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, s.Title())
	fmt.Fprintln(w, s.Description())
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(stagesCmd)
	stagesCmd.AddCommand(stagesListCmd)
	stagesListCmd.Flags().BoolVarP(&stagesListQuiet, "quiet", "q", false, "Only print stage IDs")
}
