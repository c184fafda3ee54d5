package coverage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		".coverage",
		".coverage.host-a.101.xyz",
		".coverage.host-b.202.abc",
		".coveragerc-ci",
		"unrelated.txt",
	)
	if err := os.Mkdir(filepath.Join(dir, ".coverage.not-a-file"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Discover(dir, ".coverage")
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}

	var names []string
	for _, p := range got {
		names = append(names, filepath.Base(p))
	}
	want := []string{".coverage", ".coverage.host-a.101.xyz", ".coverage.host-b.202.abc"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Discover = %v, want %v", names, want)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "gone"), ".coverage"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestParseExport(t *testing.T) {
	data := []byte(`{"files": {"a.py": {"executed_lines": [3, 1, 2]}}}`)
	got, err := ParseExport(data)
	if err != nil {
		t.Fatalf("ParseExport returned error: %v", err)
	}
	want := Profile{"a.py": {1, 2, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseExport = %v, want %v", got, want)
	}
}

func TestParseExportRejectsGarbage(t *testing.T) {
	if _, err := ParseExport([]byte("not json")); err == nil {
		t.Error("expected error for non-JSON input")
	}
	if _, err := ParseExport([]byte(`{"meta": {}}`)); err == nil {
		t.Error("expected error for export without files section")
	}
}

func TestCombinerMergesAndWarns(t *testing.T) {
	exports := map[string]Profile{
		"/w/.coverage.a": {"a.py": {1, 2}},
		"/w/.coverage.b": {"a.py": {2, 3}, "b.py": {7}},
	}
	c := &Combiner{
		Concurrency: 2,
		Export: func(ctx context.Context, fragment string) (Profile, error) {
			p, ok := exports[fragment]
			if !ok {
				return nil, fmt.Errorf("no usable data")
			}
			return p, nil
		},
	}

	merged, warnings, err := c.Combine(context.Background(),
		[]string{"/w/.coverage.a", "/w/.coverage.b", "/w/.coverage.corrupt"})
	if err != nil {
		t.Fatalf("Combine returned error: %v", err)
	}

	want := Profile{"a.py": {1, 2, 3}, "b.py": {7}}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("merged = %v, want %v", merged, want)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], ".coverage.corrupt") {
		t.Errorf("warnings = %v, want one naming the corrupt fragment", warnings)
	}
}

func TestCombinerNoFragments(t *testing.T) {
	c := &Combiner{Export: func(ctx context.Context, fragment string) (Profile, error) {
		t.Fatal("export called with no fragments")
		return nil, nil
	}}
	merged, warnings, err := c.Combine(context.Background(), nil)
	if err != nil {
		t.Fatalf("Combine returned error: %v", err)
	}
	if len(merged) != 0 || len(warnings) != 0 {
		t.Errorf("merged=%v warnings=%v, want empty", merged, warnings)
	}
}

func TestCombinerRequiresExport(t *testing.T) {
	c := &Combiner{}
	if _, _, err := c.Combine(context.Background(), []string{"f"}); err == nil {
		t.Error("expected error for nil export function")
	}
}
