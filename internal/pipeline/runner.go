// Package pipeline executes the stage sequence with fail-fast semantics:
// stages run strictly in order, and the first failing Gate Decision aborts
// the remainder of the run.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"sctci/internal/config"
	"sctci/internal/env"
	"sctci/internal/output"
	"sctci/internal/stage"
)

func exitCodeForRun(fatal, failed bool) int {
	// Exit code contract:
	// 0 = clean run, every gate passed
	// 1 = a stage's Gate Decision failed
	// 3 = fatal error (pipeline did not run)
	if fatal {
		return 3
	}
	if failed {
		return 1
	}
	return 0
}

type Runner struct {
	Stages []stage.Stage
	Out    *output.Manager
}

func NewRunner(stages []stage.Stage, out *output.Manager) *Runner {
	return &Runner{Stages: stages, Out: out}
}

// Run executes the stages in order and returns the process exit code.
// The run state starts with a snapshot of the current process environment;
// the bootstrap stage replaces it with the installed environment, and no
// stage mutates the sctci process itself.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) int {
	if r.Out == nil || len(r.Stages) == 0 {
		fmt.Fprintln(os.Stderr, "Error: pipeline has no stages or no output manager")
		return exitCodeForRun(true, false)
	}

	st := &stage.State{
		Cfg: cfg,
		Env: env.FromProcess(cfg.Runtime.WorkDir),
	}

	_ = r.Out.Write(output.Event{Type: "run.started", Stages: len(r.Stages)})

	failed := false
	for _, s := range r.Stages {
		if !cfg.Output.NoConsole {
			fmt.Fprintf(os.Stderr, "==> %s\n", s.Title())
		}
		_ = r.Out.Write(output.Event{Type: "stage.started", Stage: s.ID()})

		res := s.Run(ctx, st)
		if res.StageID == "" {
			res.StageID = s.ID()
		}
		_ = r.Out.Write(res)

		if res.Gates() {
			// No partial continuation: stages after the first failure
			// are never invoked.
			failed = true
			break
		}
	}

	code := exitCodeForRun(false, failed)
	_ = r.Out.Write(output.Event{Type: "run.finished", ExitCode: code})
	return code
}
