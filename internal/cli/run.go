package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sctci/internal/config"
	"sctci/internal/flags"
	gh "sctci/internal/github"
	"sctci/internal/output"
	"sctci/internal/pipeline"
	"sctci/internal/stage"
)

// cliCfg receives flag values. The effective config may start from a TOML
// file instead of the defaults, so changed flags are copied over it in
// effectiveConfig rather than bound to it directly.
var cliCfg = config.New()

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the CI pipeline",
	Long: `Run the full CI pipeline: bootstrap, verify, test, combine, lint.

Stages execute strictly in order. The first failing Gate Decision aborts the
remaining stages and the process exits non-zero; there is no retry and no
partial continuation. Coverage combination is the one informational stage:
its problems degrade reporting completeness but never fail the pipeline.

Configuration:
	Defaults suit a CI checkout of the distribution. A TOML file (--config)
	overrides defaults; explicit flags override both.

Output:
	Console output is controlled by --console-format (default: text).
	A structured stream can be written via --out / --out-format (json or
	ndjson). NDJSON mode emits one lifecycle Event per line (run.started,
	stage.started, stage.result, run.finished).

Exit codes:
	0 = every gate passed
	1 = a stage's Gate Decision failed
	3 = fatal error (pipeline did not run)

Examples:
  # Full pipeline against the current checkout
  sctci run

  # Reuse an existing installation and write a machine-readable stream
  sctci run --skip-install --no-console --out results.ndjson

  # Report the outcome as a GitHub commit status
  export GITHUB_TOKEN="<your_token>"
  sctci run --github-status sct/spinalcordtoolbox@$GIT_SHA
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := effectiveConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		stages, err := stage.Resolve(cfg.Runtime.Stages)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		outMgr, err := setupOutputManager(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output sinks: %v\n", err)
			os.Exit(3)
		}

		ctx := context.Background()
		code := pipeline.NewRunner(stages, outMgr).Run(ctx, cfg)
		if err := outMgr.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing output sinks: %v\n", err)
		}

		reportCommitStatus(ctx, cfg, code)
		os.Exit(code)
	},
}

// effectiveConfig resolves the run configuration: built-in defaults, then
// the TOML file if given, then explicitly set flags.
func effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.New()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	applyChangedFlags(cmd, cfg)
	return cfg, nil
}

func applyChangedFlags(cmd *cobra.Command, cfg *config.Config) {
	overrides := []struct {
		name  string
		apply func()
	}{
		{flags.FlagInstaller, func() { cfg.Install.Installer = cliCfg.Install.Installer }},
		{flags.FlagInstallArgs, func() { cfg.Install.Args = cliCfg.Install.Args }},
		{flags.FlagProfile, func() { cfg.Install.Profile = cliCfg.Install.Profile }},
		{flags.FlagCondaEnv, func() { cfg.Install.CondaEnv = cliCfg.Install.CondaEnv }},
		{flags.FlagSkipInstall, func() { cfg.Install.Skip = cliCfg.Install.Skip }},
		{flags.FlagExtraTools, func() { cfg.Tools.Extra = cliCfg.Tools.Extra }},
		{flags.FlagPython, func() { cfg.Test.Python = cliCfg.Test.Python }},
		{flags.FlagPytestArgs, func() { cfg.Test.PytestArgs = cliCfg.Test.PytestArgs }},
		{flags.FlagLintDirs, func() { cfg.Lint.Dirs = cliCfg.Lint.Dirs }},
		{flags.FlagLintExts, func() { cfg.Lint.Extensions = cliCfg.Lint.Extensions }},
		{flags.FlagConsoleFormat, func() { cfg.Output.ConsoleFormat = cliCfg.Output.ConsoleFormat }},
		{flags.FlagOut, func() { cfg.Output.Out = cliCfg.Output.Out }},
		{flags.FlagOutFormat, func() { cfg.Output.OutFormat = cliCfg.Output.OutFormat }},
		{flags.FlagNoConsole, func() { cfg.Output.NoConsole = cliCfg.Output.NoConsole }},
		{flags.FlagWorkDir, func() { cfg.Runtime.WorkDir = cliCfg.Runtime.WorkDir }},
		{flags.FlagStages, func() { cfg.Runtime.Stages = cliCfg.Runtime.Stages }},
		{flags.FlagConcurrency, func() { cfg.Runtime.Concurrency = cliCfg.Runtime.Concurrency }},
		{flags.FlagGitHubStatus, func() { cfg.GitHub.Status = cliCfg.GitHub.Status }},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.name) {
			o.apply()
		}
	}
	if cmd.Root().PersistentFlags().Changed("verbose") {
		cfg.Runtime.Verbose = cliCfg.Runtime.Verbose
	}
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Output.ConsoleFormat, nil)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// reportCommitStatus posts the run outcome to GitHub when configured.
// Reporting problems are printed and otherwise ignored; they never change
// the pipeline's exit code.
func reportCommitStatus(ctx context.Context, cfg *config.Config, code int) {
	if cfg.GitHub.Status == "" {
		return
	}

	ref, err := gh.ParseCommitRef(cfg.GitHub.Status)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: not reporting commit status: %v\n", err)
		return
	}
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "Warning: not reporting commit status: GITHUB_TOKEN is not set")
		return
	}

	client, err := gh.NewClient(ctx, token, gh.WithVerbose(cfg.Runtime.Verbose, nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: not reporting commit status: %v\n", err)
		return
	}
	if err := client.ReportStatus(ctx, ref, cfg.GitHub.Context, code); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: commit status not reported: %v\n", err)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Install
	runCmd.Flags().StringVar(&cliCfg.Install.Installer, flags.FlagInstaller, cliCfg.Install.Installer, "Path of the distribution's source installer")
	runCmd.Flags().StringSliceVar(&cliCfg.Install.Args, flags.FlagInstallArgs, cliCfg.Install.Args, "Arguments passed to the installer (default selects non-interactive mode)")
	runCmd.Flags().StringVar(&cliCfg.Install.Profile, flags.FlagProfile, cliCfg.Install.Profile, "Shell profile produced by the installer, sourced to capture the environment")
	runCmd.Flags().StringVar(&cliCfg.Install.CondaEnv, flags.FlagCondaEnv, cliCfg.Install.CondaEnv, "Isolated runtime environment to activate")
	runCmd.Flags().BoolVar(&cliCfg.Install.Skip, flags.FlagSkipInstall, false, "Reuse an existing installation (profile is still sourced)")

	// Tools
	runCmd.Flags().StringSliceVar(&cliCfg.Tools.Extra, flags.FlagExtraTools, nil, "Extra command names appended to the verification catalogue (repeatable; comma-separated accepted)")

	// Test
	runCmd.Flags().StringVar(&cliCfg.Test.Python, flags.FlagPython, cliCfg.Test.Python, "Interpreter used for the test suite and coverage engine")
	runCmd.Flags().StringSliceVar(&cliCfg.Test.PytestArgs, flags.FlagPytestArgs, nil, "Extra arguments for the test run (repeatable; comma-separated accepted)")

	// Lint
	runCmd.Flags().StringSliceVar(&cliCfg.Lint.Dirs, flags.FlagLintDirs, cliCfg.Lint.Dirs, "First-party source directories to lint (repeatable; comma-separated accepted)")
	runCmd.Flags().StringSliceVar(&cliCfg.Lint.Extensions, flags.FlagLintExts, cliCfg.Lint.Extensions, "File extensions to lint (repeatable; comma-separated accepted)")

	// Output
	runCmd.Flags().StringVar(&cliCfg.Output.ConsoleFormat, flags.FlagConsoleFormat, cliCfg.Output.ConsoleFormat, "Console output format: text|json|ndjson (default: text)")
	runCmd.Flags().StringVar(&cliCfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	runCmd.Flags().StringVar(&cliCfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	runCmd.Flags().BoolVar(&cliCfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --out)")

	// Runtime
	runCmd.Flags().StringVar(&configPath, flags.FlagConfig, "", "TOML config file (flags override file values)")
	runCmd.Flags().StringVar(&cliCfg.Runtime.WorkDir, flags.FlagWorkDir, cliCfg.Runtime.WorkDir, "Distribution checkout the pipeline runs against")
	runCmd.Flags().StringVar(&cliCfg.Runtime.Stages, flags.FlagStages, cliCfg.Runtime.Stages, "Ordered comma-separated stage selector")
	runCmd.Flags().IntVar(&cliCfg.Runtime.Concurrency, flags.FlagConcurrency, cliCfg.Runtime.Concurrency, "Fragment conversion workers in the combine stage")

	// GitHub
	runCmd.Flags().StringVar(&cliCfg.GitHub.Status, flags.FlagGitHubStatus, "", "Report the outcome as a commit status for OWNER/REPO@SHA (requires GITHUB_TOKEN)")
}
