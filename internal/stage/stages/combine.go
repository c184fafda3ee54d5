package stages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/executor"

	"sctci/internal/coverage"
	"sctci/internal/stage"
)

const mergedReportName = "coverage-merged.json"

type CombineStage struct {
	// export is a test seam; nil means the coverage engine's JSON export.
	export func(st *stage.State) coverage.ExportFunc
}

func (s *CombineStage) ID() string {
	return "combine"
}

func (s *CombineStage) Title() string {
	return "Merge coverage fragments"
}

func (s *CombineStage) Description() string {
	return "Merges the per-process coverage fragments the test stage produced into " +
		"one consolidated report keyed by source line. Pure aggregation: the stage " +
		"has no gating power, and a missing or corrupt fragment degrades reporting " +
		"completeness without failing the pipeline (test correctness was already " +
		"gated by the test stage)."
}

func (s *CombineStage) Run(ctx context.Context, st *stage.State) stage.Result {
	if st.Env == nil {
		return stage.Warn(s.ID(), "environment not bootstrapped; nothing to combine")
	}
	cfg := st.Cfg

	fragments, err := coverage.Discover(st.Env.WorkDir, filepath.Base(cfg.Test.CoverageFile))
	if err != nil {
		return stage.Warn(s.ID(), fmt.Sprintf("could not enumerate fragments: %v", err))
	}
	if len(fragments) == 0 {
		return stage.Warn(s.ID(), "no coverage fragments found")
	}

	export := s.export
	if export == nil {
		export = coverageJSONExport
	}
	combiner := &coverage.Combiner{
		Export:      export(st),
		Concurrency: cfg.Runtime.Concurrency,
	}
	merged, warnings, err := combiner.Combine(ctx, fragments)
	if err != nil {
		return stage.Warn(s.ID(), fmt.Sprintf("combine failed: %v", err))
	}

	reportPath := filepath.Join(st.Env.WorkDir, mergedReportName)
	if err := coverage.WriteReport(reportPath, merged); err != nil {
		return stage.Warn(s.ID(), fmt.Sprintf("could not write merged report: %v", err))
	}

	if len(warnings) > 0 {
		return stage.Warn(s.ID(), fmt.Sprintf("merged %d of %d fragments: %s",
			len(fragments)-len(warnings), len(fragments), strings.Join(warnings, "; ")))
	}

	r := stage.Pass(s.ID(), fmt.Sprintf("merged %d fragments, %d lines covered",
		len(fragments), merged.TotalLines()))
	r.Evidence = map[string]string{"report": reportPath}
	return r
}

// coverageJSONExport converts one fragment through the coverage engine's
// JSON export, which is the only stable interface to its data files.
func coverageJSONExport(st *stage.State) coverage.ExportFunc {
	return func(ctx context.Context, fragment string) (coverage.Profile, error) {
		python, err := st.Env.LookPath(st.Cfg.Test.Python)
		if err != nil {
			return nil, err
		}

		tmp, err := os.CreateTemp("", "sctci-cov-*.json")
		if err != nil {
			return nil, err
		}
		tmpPath := tmp.Name()
		tmp.Close()
		defer os.Remove(tmpPath)

		res, err := executor.New(python,
			"-m", "coverage", "json", "--data-file", fragment, "-o", tmpPath, "-q").Execute(ctx,
			executor.SilentMode(),
			executor.WithWorkingDir(st.Env.WorkDir),
			executor.WithEnv(st.Env.Vars),
		)
		if err != nil {
			if res != nil && res.Stderr != "" {
				return nil, fmt.Errorf("coverage json: %w (%s)", err, strings.TrimSpace(res.Stderr))
			}
			return nil, fmt.Errorf("coverage json: %w", err)
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return nil, err
		}
		return coverage.ParseExport(data)
	}
}

func init() {
	stage.Register(&CombineStage{})
}
