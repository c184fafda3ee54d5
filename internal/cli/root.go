package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sctci",
	Short: "Install, verify, test and lint the Spinal Cord Toolbox distribution",
	Long: `sctci is the continuous-integration harness for the Spinal Cord Toolbox.

It runs a fixed, fail-fast pipeline: install the distribution from source,
verify that every expected command-line entry point is reachable, run the
test suite with per-process coverage instrumentation, merge the coverage
fragments into one report, and gate the build on error-severity lint
findings.

Examples:
	# Show available commands and global flags
	sctci --help

	# Run the full pipeline against the current checkout
	sctci run

	# List the pipeline stages
	sctci stages list

	# List the tool catalogue the verify stage checks
	sctci tools list

	# Print build info
	sctci version`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cliCfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (prints subprocess details and full error output)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
