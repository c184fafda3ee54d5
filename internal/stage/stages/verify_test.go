package stages

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sctci/internal/catalog"
	"sctci/internal/config"
	"sctci/internal/env"
	"sctci/internal/stage"
)

func testState(t *testing.T, e *env.Env) *stage.State {
	t.Helper()
	cfg := config.New()
	cfg.Output.NoConsole = true
	return &stage.State{Cfg: cfg, Env: e}
}

// binDir creates a directory containing executables with the given names
// and returns an Env whose search path is only that directory.
func binDir(t *testing.T, names ...string) *env.Env {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return env.New(map[string]string{"PATH": dir}, dir)
}

func TestVerifyReportsFirstMissingTool(t *testing.T) {
	var progress bytes.Buffer
	s := &VerifyStage{
		catalogue: func(extra []string) []string {
			return []string{"sct_version", "sct_testing", "sct_image"}
		},
		progress: &progress,
	}
	st := testState(t, binDir(t, "sct_version", "sct_image"))
	st.Cfg.Output.NoConsole = false

	res := s.Run(context.Background(), st)
	if res.Status != stage.StatusFail {
		t.Fatalf("status = %s, want FAIL", res.Status)
	}
	if res.Message != "missing tool: sct_testing" {
		t.Errorf("message = %q, want exactly the first missing name", res.Message)
	}
	// Catalogue order respected: the name after the missing one is never
	// checked, so it never appears in the progress log.
	if strings.Contains(progress.String(), "sct_image") {
		t.Error("verifier continued past the first missing tool")
	}
	if !strings.Contains(progress.String(), "sct_version") {
		t.Error("resolved path for sct_version not reported")
	}
}

func TestVerifyAllResolve(t *testing.T) {
	s := &VerifyStage{
		catalogue: func(extra []string) []string { return []string{"sct_version", "sct_testing"} },
	}
	res := s.Run(context.Background(), testState(t, binDir(t, "sct_version", "sct_testing")))
	if res.Status != stage.StatusPass {
		t.Fatalf("status = %s, want PASS (message: %s)", res.Status, res.Message)
	}
	if res.Evidence["tools"] != "2" {
		t.Errorf("evidence tools = %q, want 2", res.Evidence["tools"])
	}
}

func TestVerifyFullCatalogue(t *testing.T) {
	e := binDir(t, catalog.Commands...)
	s := &VerifyStage{}
	res := s.Run(context.Background(), testState(t, e))
	if res.Status != stage.StatusPass {
		t.Fatalf("status = %s, want PASS (message: %s)", res.Status, res.Message)
	}
}

func TestVerifyIncludesExtraTools(t *testing.T) {
	s := &VerifyStage{
		catalogue: func(extra []string) []string { return append([]string{"sct_version"}, extra...) },
	}
	st := testState(t, binDir(t, "sct_version"))
	st.Cfg.Tools.Extra = []string{"sct_site_tool"}

	res := s.Run(context.Background(), st)
	if res.Status != stage.StatusFail || res.Message != "missing tool: sct_site_tool" {
		t.Errorf("result = %+v, want failure naming sct_site_tool", res)
	}
}

func TestVerifyWithoutEnv(t *testing.T) {
	s := &VerifyStage{}
	res := s.Run(context.Background(), testState(t, nil))
	if res.Status != stage.StatusFail {
		t.Errorf("status = %s, want FAIL", res.Status)
	}
}
