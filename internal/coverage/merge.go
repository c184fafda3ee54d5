// Package coverage consolidates per-process coverage fragments into one
// report. The coverage engine runs the instrumentation and owns the fragment
// format; this package only enumerates fragments, converts each to a
// covered-line profile via the engine's JSON export, and merges the profiles
// keyed by source line.
package coverage

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Profile maps a source file path to the set of executed line numbers,
// stored sorted and deduplicated.
type Profile map[string][]int

// Merge unions any number of profiles into one. Merging is commutative and
// idempotent: Merge(a, a) == a, and combining already-combined output with
// another profile gives the same lines as combining the originals.
func Merge(profiles ...Profile) Profile {
	lines := make(map[string]map[int]struct{})
	for _, p := range profiles {
		for file, executed := range p {
			set, ok := lines[file]
			if !ok {
				set = make(map[int]struct{})
				lines[file] = set
			}
			for _, ln := range executed {
				set[ln] = struct{}{}
			}
		}
	}

	merged := make(Profile, len(lines))
	for file, set := range lines {
		out := make([]int, 0, len(set))
		for ln := range set {
			out = append(out, ln)
		}
		sort.Ints(out)
		merged[file] = out
	}
	return merged
}

// TotalLines counts covered lines across all files.
func (p Profile) TotalLines() int {
	n := 0
	for _, executed := range p {
		n += len(executed)
	}
	return n
}

// report is the consolidated on-disk artifact superseding the fragments.
type report struct {
	Files  map[string]reportFile `json:"files"`
	Totals reportTotals          `json:"totals"`
}

type reportFile struct {
	ExecutedLines []int `json:"executed_lines"`
}

type reportTotals struct {
	Files         int `json:"files"`
	ExecutedLines int `json:"executed_lines"`
}

// WriteReport persists the merged profile as JSON.
func WriteReport(path string, p Profile) error {
	r := report{
		Files: make(map[string]reportFile, len(p)),
		Totals: reportTotals{
			Files:         len(p),
			ExecutedLines: p.TotalLines(),
		},
	}
	for file, executed := range p {
		r.Files[file] = reportFile{ExecutedLines: executed}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode coverage report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write coverage report: %w", err)
	}
	return nil
}

// ReadReport loads a previously written consolidated report as a Profile,
// so a merged artifact can participate in further merges.
func ReadReport(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read coverage report: %w", err)
	}
	return ParseExport(data)
}
