package coverage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Discover lists the per-process coverage fragments in dir. Fragments are
// named base plus a per-process suffix (host.pid.random); the bare base
// file, if present, is the engine's single-process data file and is
// included too so a non-parallel run still gets merged.
func Discover(dir, base string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read working directory: %w", err)
	}

	var fragments []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == base || strings.HasPrefix(name, base+".") {
			fragments = append(fragments, filepath.Join(dir, name))
		}
	}
	sort.Strings(fragments)
	return fragments, nil
}

// ParseExport decodes the coverage engine's JSON export format
// ({"files": {path: {"executed_lines": [...]}}}) into a Profile.
func ParseExport(data []byte) (Profile, error) {
	var doc struct {
		Files map[string]struct {
			ExecutedLines []int `json:"executed_lines"`
		} `json:"files"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode coverage export: %w", err)
	}
	if doc.Files == nil {
		return nil, fmt.Errorf("coverage export has no files section")
	}

	p := make(Profile, len(doc.Files))
	for file, f := range doc.Files {
		executed := append([]int(nil), f.ExecutedLines...)
		sort.Ints(executed)
		p[file] = executed
	}
	return p, nil
}

// ExportFunc converts one fragment file into a Profile. The production
// implementation shells out to the coverage engine's JSON export; tests
// substitute their own.
type ExportFunc func(ctx context.Context, fragment string) (Profile, error)

// Combiner merges all fragments of a run into one profile. A fragment that
// cannot be converted degrades to a warning: test correctness was already
// gated by the test stage, so here broken data only reduces reporting
// completeness.
type Combiner struct {
	Export      ExportFunc
	Concurrency int
}

// Combine converts the fragments (bounded fan-out) and merges the resulting
// profiles. It returns the merged profile plus one warning per fragment
// that failed to convert. The returned error is reserved for invariant
// breakage (nil Export), not data problems.
func (c *Combiner) Combine(ctx context.Context, fragments []string) (Profile, []string, error) {
	if c.Export == nil {
		return nil, nil, fmt.Errorf("combiner has no export function")
	}

	workers := c.Concurrency
	if workers < 1 {
		workers = 1
	}

	var (
		mu       sync.Mutex
		profiles []Profile
		warnings []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, fragment := range fragments {
		g.Go(func() error {
			p, err := c.Export(gctx, fragment)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("fragment %s: %v", filepath.Base(fragment), err))
				return nil
			}
			profiles = append(profiles, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, warnings, err
	}

	sort.Strings(warnings)
	return Merge(profiles...), warnings, nil
}
