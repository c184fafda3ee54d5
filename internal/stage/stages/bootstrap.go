// Package stages holds the concrete pipeline stages. Each stage registers
// itself at init time and is selected by ID through the stage registry.
package stages

import (
	"context"
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/executor"

	"sctci/internal/env"
	"sctci/internal/stage"
)

type BootstrapStage struct {
	// runInstaller and loadEnv are test seams. If nil, the stage runs the
	// real installer and sources the real profile.
	runInstaller func(ctx context.Context, st *stage.State) error
	loadEnv      func(ctx context.Context, st *stage.State) (*env.Env, error)
}

func (s *BootstrapStage) ID() string {
	return "bootstrap"
}

func (s *BootstrapStage) Title() string {
	return "Install distribution and capture environment"
}

func (s *BootstrapStage) Description() string {
	return "Runs the source installer non-interactively, then sources the profile it " +
		"produces and activates the isolated runtime environment. The resulting " +
		"environment is captured as an explicit value handed to every later stage; " +
		"the sctci process itself is never mutated. Installer failure aborts the " +
		"pipeline and is not retried."
}

func (s *BootstrapStage) Run(ctx context.Context, st *stage.State) stage.Result {
	skipped := st.Cfg.Install.Skip

	if !skipped {
		run := s.runInstaller
		if run == nil {
			run = runInstaller
		}
		if err := run(ctx, st); err != nil {
			return stage.Fail(s.ID(), fmt.Sprintf("installer failed: %v", err))
		}
	}

	load := s.loadEnv
	if load == nil {
		load = loadInstalledEnv
	}
	e, err := load(ctx, st)
	if err != nil {
		return stage.Fail(s.ID(), fmt.Sprintf("could not capture installed environment: %v", err))
	}
	st.Env = e

	if skipped {
		return stage.Skip(s.ID(), "installer not run; environment captured from existing profile")
	}
	return stage.Pass(s.ID(), "distribution installed and environment captured")
}

func runInstaller(ctx context.Context, st *stage.State) error {
	cfg := st.Cfg
	_, err := executor.New(cfg.Install.Installer, cfg.Install.Args...).Execute(ctx,
		executor.ConsoleOnly(),
		executor.WithWorkingDir(cfg.Runtime.WorkDir),
		// Progress bars corrupt CI logs during dependency installation.
		executor.WithEnvVar("PIP_PROGRESS_BAR", "off"),
	)
	return err
}

// loadInstalledEnv sources the installer's profile, activates the conda
// environment, and dumps the resulting variables NUL-separated so they can
// be parsed into an immutable env.Env.
func loadInstalledEnv(ctx context.Context, st *stage.State) (*env.Env, error) {
	cfg := st.Cfg
	script := fmt.Sprintf("source %q >/dev/null 2>&1 && conda activate %q >/dev/null 2>&1 && env -0",
		cfg.Install.Profile, cfg.Install.CondaEnv)

	res, err := executor.New("bash", "-c", script).Execute(ctx,
		executor.SilentMode(),
		executor.WithWorkingDir(cfg.Runtime.WorkDir),
	)
	if err != nil {
		if res != nil && res.Stderr != "" {
			return nil, fmt.Errorf("source %s: %w (%s)", cfg.Install.Profile, err, res.Stderr)
		}
		return nil, fmt.Errorf("source %s: %w", cfg.Install.Profile, err)
	}
	return env.Parse([]byte(res.Stdout), cfg.Runtime.WorkDir)
}

func init() {
	stage.Register(&BootstrapStage{})
}
