package stages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/executor"

	"sctci/internal/stage"
)

// coverageRC configures the coverage engine for a multi-process test run:
// subprocesses each measure into their own data file, and per-process
// results are kept separate until the combine stage merges them.
const coverageRC = `[run]
concurrency = multiprocessing
parallel = True
`

// startupHook makes every spawned interpreter initialize coverage
// measurement, so subprocesses of the test framework are measured too.
const startupHook = "import coverage; coverage.process_startup()\n"

const startupHookFile = "sctci-coverage.pth"

type TestStage struct {
	// siteDir and run are test seams. If nil, the stage asks the real
	// interpreter for its site-packages directory and runs the real suite.
	siteDir func(ctx context.Context, st *stage.State) (string, error)
	run     func(ctx context.Context, st *stage.State, extraEnv map[string]string) error
}

func (s *TestStage) ID() string {
	return "test"
}

func (s *TestStage) Title() string {
	return "Run test suite with coverage instrumentation"
}

func (s *TestStage) Description() string {
	return "Registers a process-startup coverage hook, configures the coverage " +
		"engine for multiple concurrent measuring processes, and runs the full " +
		"test suite. Each worker process persists its own coverage fragment in " +
		"the working directory. Any test failure is fatal to the pipeline; there " +
		"is no partial-success continuation and no retry of flaky tests."
}

func (s *TestStage) Run(ctx context.Context, st *stage.State) stage.Result {
	if st.Env == nil {
		return stage.Fail(s.ID(), "environment not bootstrapped")
	}
	cfg := st.Cfg

	workDir, err := filepath.Abs(st.Env.WorkDir)
	if err != nil {
		return stage.Fail(s.ID(), fmt.Sprintf("resolve working directory: %v", err))
	}
	rcPath := filepath.Join(workDir, cfg.Test.CoverageRC)
	dataPath := filepath.Join(workDir, cfg.Test.CoverageFile)

	if err := os.WriteFile(rcPath, []byte(coverageRC), 0o644); err != nil {
		return stage.Fail(s.ID(), fmt.Sprintf("write coverage config: %v", err))
	}

	site := s.siteDir
	if site == nil {
		site = interpreterSiteDir
	}
	siteDir, err := site(ctx, st)
	if err != nil {
		return stage.Fail(s.ID(), fmt.Sprintf("locate site-packages: %v", err))
	}
	if err := os.WriteFile(filepath.Join(siteDir, startupHookFile), []byte(startupHook), 0o644); err != nil {
		return stage.Fail(s.ID(), fmt.Sprintf("write startup hook: %v", err))
	}

	extraEnv := map[string]string{
		"COVERAGE_PROCESS_START": rcPath,
		"COVERAGE_FILE":          dataPath,
	}

	run := s.run
	if run == nil {
		run = runTestSuite
	}
	if err := run(ctx, st, extraEnv); err != nil {
		return stage.Fail(s.ID(), fmt.Sprintf("test suite failed: %v", err))
	}

	r := stage.Pass(s.ID(), "test suite passed")
	r.Evidence = map[string]string{
		"coverage_rc":   rcPath,
		"coverage_file": dataPath,
	}
	return r
}

func interpreterSiteDir(ctx context.Context, st *stage.State) (string, error) {
	python, err := st.Env.LookPath(st.Cfg.Test.Python)
	if err != nil {
		return "", err
	}
	res, err := executor.New(python, "-c", "import site; print(site.getsitepackages()[0])").Execute(ctx,
		executor.SilentMode(),
		executor.WithWorkingDir(st.Env.WorkDir),
		executor.WithEnv(st.Env.Vars),
	)
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(res.Stdout)
	if dir == "" {
		return "", fmt.Errorf("interpreter reported no site-packages directory")
	}
	return dir, nil
}

func runTestSuite(ctx context.Context, st *stage.State, extraEnv map[string]string) error {
	python, err := st.Env.LookPath(st.Cfg.Test.Python)
	if err != nil {
		return err
	}
	args := append([]string{"-m", "pytest"}, st.Cfg.Test.PytestArgs...)

	_, err = executor.New(python, args...).Execute(ctx,
		executor.ConsoleOnly(),
		executor.WithWorkingDir(st.Env.WorkDir),
		executor.WithEnv(st.Env.With(extraEnv).Vars),
	)
	return err
}

func init() {
	stage.Register(&TestStage{})
}
