package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Install Install `toml:"install"`
	Tools   Tools   `toml:"tools"`
	Test    Test    `toml:"test"`
	Lint    Lint    `toml:"lint"`
	Output  Output  `toml:"output"`
	Runtime Runtime `toml:"runtime"`
	GitHub  GitHub  `toml:"github"`
}

type Install struct {
	// Installer is the path of the distribution's source installer (see --installer).
	Installer string `toml:"installer"`

	// Args are passed to the installer. Defaults select the non-interactive,
	// auto-confirmed mode so a CI run never blocks on a prompt.
	Args []string `toml:"args"`

	// Profile is the shell profile the installer produces; the bootstrap
	// stage sources it to capture the installed environment (see --profile).
	Profile string `toml:"profile"`

	// CondaEnv is the isolated runtime environment activated after sourcing
	// the profile (see --conda-env).
	CondaEnv string `toml:"conda_env"`

	// Skip reuses an existing installation: the profile is still sourced,
	// the installer is not run (see --skip-install).
	Skip bool `toml:"skip"`
}

type Tools struct {
	// Extra appends command names to the built-in verification catalogue
	// (see --extra-tools).
	Extra []string `toml:"extra"`
}

type Test struct {
	// Python names the interpreter used for the test suite and the
	// coverage engine. Resolved against the bootstrapped environment,
	// not the process PATH (see --python).
	Python string `toml:"python"`

	// PytestArgs are appended to the test invocation (see --pytest-args).
	PytestArgs []string `toml:"pytest_args"`

	// CoverageRC is the coverage engine config file the test stage writes
	// into the working directory.
	CoverageRC string `toml:"coverage_rc"`

	// CoverageFile is the base path for coverage data. Worker fragments
	// appear as CoverageFile plus a per-process suffix.
	CoverageFile string `toml:"coverage_file"`
}

type Lint struct {
	// Dirs are the first-party source directories whose tracked files are
	// linted (see --lint-dirs).
	Dirs []string `toml:"dirs"`

	// Extensions filter the tracked file list (see --lint-extensions).
	Extensions []string `toml:"extensions"`
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string `toml:"console_format"`

	// Out writes structured output to this path (see --out).
	Out string `toml:"out"`

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string `toml:"out_format"`

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool `toml:"no_console"`
}

type Runtime struct {
	// WorkDir is the distribution checkout the pipeline runs against
	// (see --workdir).
	WorkDir string `toml:"workdir"`

	// Stages is the ordered comma-separated stage selector. The default is
	// the full pipeline; trimming it is for development only.
	Stages string `toml:"stages"`

	// Concurrency bounds the combine stage's fragment conversion fan-out
	// (see --concurrency). Stages themselves always run sequentially.
	Concurrency int `toml:"concurrency"`

	// Verbose enables more detailed diagnostics.
	Verbose bool `toml:"verbose"`
}

type GitHub struct {
	// Status posts the pipeline outcome as a commit status when set to
	// OWNER/REPO@SHA (see --github-status). Reporting is informational and
	// never gates the pipeline.
	Status string `toml:"status"`

	// Context is the status context name shown by GitHub.
	Context string `toml:"context"`
}

// DefaultStages is the fixed pipeline order. Stage execution follows this
// sequence with fail-fast semantics; see internal/pipeline.
const DefaultStages = "bootstrap,verify,test,combine,lint"

func New() *Config {
	return &Config{
		Install: Install{
			Installer: "./install_sct",
			Args:      []string{"-i", "-y"},
			Profile:   "python/etc/profile.d/conda.sh",
			CondaEnv:  "venv_sct",
		},
		Test: Test{
			Python:       "python",
			CoverageRC:   "coveragerc-ci",
			CoverageFile: ".coverage",
		},
		Lint: Lint{
			Dirs:       []string{"scripts", "spinalcordtoolbox", "testing"},
			Extensions: []string{".py"},
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			WorkDir:     ".",
			Stages:      DefaultStages,
			Concurrency: 4,
		},
		GitHub: GitHub{
			Context: "ci/sctci",
		},
	}
}

// Load reads a TOML config file over the built-in defaults. Keys absent
// from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Tools.Extra = splitCommaList(c.Tools.Extra)
	c.Lint.Dirs = splitCommaList(c.Lint.Dirs)
	c.Lint.Extensions = splitCommaList(c.Lint.Extensions)

	if strings.TrimSpace(c.Install.Installer) == "" {
		return errors.New("--installer must not be empty")
	}
	if strings.TrimSpace(c.Install.Profile) == "" {
		return errors.New("--profile must not be empty")
	}
	if strings.TrimSpace(c.Test.Python) == "" {
		return errors.New("--python must not be empty")
	}
	if strings.TrimSpace(c.Runtime.WorkDir) == "" {
		return errors.New("--workdir must not be empty")
	}

	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		c.Output.ConsoleFormat = "text"
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	if c.Output.OutFormat != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported --out-format: %s (must be one of: json, ndjson)", c.Output.OutFormat)
		}
		if c.Output.Out == "" {
			return errors.New("--out-format requires --out")
		}
	}

	if strings.TrimSpace(c.Runtime.Stages) == "" {
		return errors.New("--stages must not be empty")
	}
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}

	if c.GitHub.Status != "" {
		if !strings.Contains(c.GitHub.Status, "/") || !strings.Contains(c.GitHub.Status, "@") {
			return fmt.Errorf("invalid --github-status %q (must be OWNER/REPO@SHA)", c.GitHub.Status)
		}
	}

	if len(c.Lint.Dirs) == 0 {
		return errors.New("--lint-dirs must name at least one directory")
	}
	if len(c.Lint.Extensions) == 0 {
		return errors.New("--lint-extensions must name at least one extension")
	}
	for i, ext := range c.Lint.Extensions {
		if !strings.HasPrefix(ext, ".") {
			c.Lint.Extensions[i] = "." + ext
		}
	}

	return nil
}

// splitCommaList expands entries like "a,b" into separate values and trims
// whitespace, so repeated flags and comma-separated lists behave the same.
func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func normalizeEnumValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
