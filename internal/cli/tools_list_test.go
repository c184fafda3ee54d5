package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestToolsListCmd(t *testing.T) {
	buf := new(bytes.Buffer)
	toolsListCmd.SetOut(buf)

	if err := toolsListCmd.RunE(toolsListCmd, []string{}); err != nil {
		t.Fatalf("RunE() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) < 50 {
		t.Fatalf("expected at least 50 catalogued commands, got %d", len(lines))
	}

	seen := make(map[string]bool, len(lines))
	for _, name := range lines {
		if seen[name] {
			t.Errorf("command %q listed twice", name)
		}
		seen[name] = true
	}
	if !seen["sct_version"] {
		t.Error("expected sct_version in the listing")
	}
}
