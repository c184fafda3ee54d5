package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/executor"

	"sctci/internal/pylint"
	"sctci/internal/stage"
)

type LintStage struct {
	// listTracked and runLint are test seams. If nil, the stage reads the
	// version-controlled file list from git and runs the real lint tool.
	listTracked func(ctx context.Context, st *stage.State) ([]string, error)
	runLint     func(ctx context.Context, st *stage.State, targets []string) (int, error)
}

func (s *LintStage) ID() string {
	return "lint"
}

func (s *LintStage) Title() string {
	return "Static analysis gate"
}

func (s *LintStage) Description() string {
	return "Selects first-party source files from the tracked file list, runs a " +
		"lint pass restricted to error-severity findings plus the Python 3 " +
		"compatibility checker, and gates the pipeline on the decoded outcome. " +
		"Only the error-findings bit of the lint tool's exit status fails the " +
		"gate; fatal-tool-error and usage bits are surfaced but not conflated " +
		"with lint failures."
}

func (s *LintStage) Run(ctx context.Context, st *stage.State) stage.Result {
	if st.Env == nil {
		return stage.Fail(s.ID(), "environment not bootstrapped")
	}
	cfg := st.Cfg

	list := s.listTracked
	if list == nil {
		list = gitTrackedFiles
	}
	tracked, err := list(ctx, st)
	if err != nil {
		return stage.Fail(s.ID(), fmt.Sprintf("could not list tracked files: %v", err))
	}

	targets := pylint.FilterTargets(tracked, cfg.Lint.Dirs, cfg.Lint.Extensions)
	if len(targets) == 0 {
		return stage.Pass(s.ID(), "no lint targets matched")
	}

	run := s.runLint
	if run == nil {
		run = runPylint
	}
	status, err := run(ctx, st, targets)
	if err != nil {
		return stage.Fail(s.ID(), fmt.Sprintf("lint tool could not run: %v", err))
	}

	switch outcome := pylint.Decode(status); outcome {
	case pylint.OutcomeFindings:
		return stage.Fail(s.ID(), fmt.Sprintf("error-severity findings in %d linted files", len(targets)))
	case pylint.OutcomeToolError:
		return stage.Warn(s.ID(), fmt.Sprintf("lint tool error (exit status %d); findings not certified", status))
	default:
		r := stage.Pass(s.ID(), fmt.Sprintf("%d files clean", len(targets)))
		r.Evidence = map[string]string{"exit_status": fmt.Sprintf("%d", status)}
		return r
	}
}

func gitTrackedFiles(ctx context.Context, st *stage.State) ([]string, error) {
	res, err := executor.New("git", "ls-files", "-z").Execute(ctx,
		executor.SilentMode(),
		executor.WithWorkingDir(st.Env.WorkDir),
	)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, f := range strings.Split(res.Stdout, "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// runPylint returns the lint tool's raw exit status; decoding it is the
// caller's job. A status of -1 from the executor means the tool never ran.
func runPylint(ctx context.Context, st *stage.State, targets []string) (int, error) {
	python, err := st.Env.LookPath(st.Cfg.Test.Python)
	if err != nil {
		return 0, err
	}

	args := append([]string{"-m", "pylint", "--errors-only", "--enable=python3"}, targets...)
	res, execErr := executor.New(python, args...).Execute(ctx,
		executor.ConsoleOnly(),
		executor.WithWorkingDir(st.Env.WorkDir),
		executor.WithEnv(st.Env.Vars),
	)
	if res != nil && res.ExitCode >= 0 {
		return res.ExitCode, nil
	}
	return 0, execErr
}

func init() {
	stage.Register(&LintStage{})
}
