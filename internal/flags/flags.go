package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// pipeline. Keeping these as constants helps avoid drift between Cobra flag
// wiring and other code paths that need to reference flags.
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Install
	FlagInstaller   = "installer"
	FlagInstallArgs = "install-args"
	FlagProfile     = "profile"
	FlagCondaEnv    = "conda-env"
	FlagSkipInstall = "skip-install"

	// Tools
	FlagExtraTools = "extra-tools"

	// Test
	FlagPython     = "python"
	FlagPytestArgs = "pytest-args"

	// Lint
	FlagLintDirs = "lint-dirs"
	FlagLintExts = "lint-extensions"

	// Output
	FlagConsoleFormat = "console-format"
	FlagOut           = "out"
	FlagOutFormat     = "out-format"
	FlagNoConsole     = "no-console"

	// Runtime
	FlagConfig      = "config"
	FlagWorkDir     = "workdir"
	FlagStages      = "stages"
	FlagConcurrency = "concurrency"

	// GitHub
	FlagGitHubStatus = "github-status"
)
