package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"sctci/internal/stage"
)

func init() {
	// Keep assertions on raw text stable regardless of the test terminal.
	color.NoColor = true
}

func TestConsoleSink_Filtering(t *testing.T) {
	tests := []struct {
		name           string
		format         string
		filterStatuses []string
		input          stage.Result
		shouldWrite    bool
	}{
		{
			name:           "text - no filter - pass",
			format:         "text",
			filterStatuses: nil,
			input:          stage.Result{Status: stage.StatusPass, StageID: "verify"},
			shouldWrite:    true,
		},
		{
			name:           "text - filter FAIL - input PASS",
			format:         "text",
			filterStatuses: []string{"FAIL"},
			input:          stage.Result{Status: stage.StatusPass, StageID: "verify"},
			shouldWrite:    false,
		},
		{
			name:           "text - filter FAIL - input FAIL",
			format:         "text",
			filterStatuses: []string{"FAIL"},
			input:          stage.Result{Status: stage.StatusFail, StageID: "lint"},
			shouldWrite:    true,
		},
		{
			name:           "text - filter FAIL,WARN - input WARN",
			format:         "text",
			filterStatuses: []string{"FAIL", "WARN"},
			input:          stage.Result{Status: stage.StatusWarn, StageID: "combine"},
			shouldWrite:    true,
		},
		{
			name:           "json - filter FAIL - input PASS",
			format:         "json",
			filterStatuses: []string{"FAIL"},
			input:          stage.Result{Status: stage.StatusPass, StageID: "verify"},
			shouldWrite:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewConsoleSink(&buf, tt.format, tt.filterStatuses)
			if err := s.Write(tt.input); err != nil {
				t.Fatalf("Write returned error: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close returned error: %v", err)
			}

			wrote := strings.Contains(buf.String(), tt.input.StageID)
			if wrote != tt.shouldWrite {
				t.Errorf("wrote = %v, want %v (output: %q)", wrote, tt.shouldWrite, buf.String())
			}
		})
	}
}

func TestConsoleSink_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, "text", nil)

	if err := s.Write(stage.Result{Status: stage.StatusFail, StageID: "verify", Message: "missing tool: sct_qc"}); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	want := "[FAIL] verify - missing tool: sct_qc\n"
	if got != want {
		t.Errorf("text output = %q, want %q", got, want)
	}

	// Lifecycle events are ignored in text mode.
	buf.Reset()
	if err := s.Write(Event{Type: "run.started", Stages: 5}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("text mode wrote event: %q", buf.String())
	}
}

func TestConsoleSink_NDJSON(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, "ndjson", nil)

	if err := s.Write(Event{Type: "run.started", Stages: 5}); err != nil {
		t.Fatal(err)
	}
	if err := s.Write(stage.Result{Status: stage.StatusPass, StageID: "bootstrap"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}

	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 not JSON: %v", err)
	}
	if first.Type != "run.started" || first.Stages != 5 {
		t.Errorf("first event = %+v", first)
	}

	var second Event
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 2 not JSON: %v", err)
	}
	if second.Type != "stage.result" || second.Stage != "bootstrap" {
		t.Errorf("second event = %+v", second)
	}
}

func TestConsoleSink_JSONAggregate(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, "json", nil)

	if err := s.Write(stage.Result{Status: stage.StatusPass, StageID: "bootstrap"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Write(stage.Result{Status: stage.StatusWarn, StageID: "combine"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	var results []stage.Result
	if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
		t.Fatalf("aggregate output not a JSON array: %v", err)
	}
	if len(results) != 2 || results[1].StageID != "combine" {
		t.Errorf("results = %+v", results)
	}
}
