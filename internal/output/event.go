package output

import "sctci/internal/stage"

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - stage.started
// - stage.result
// - run.finished
//
// JSON mode remains an aggregate of stage.Result values.
type Event struct {
	Type  string `json:"type"`
	Stage string `json:"stage,omitempty"`
	*stage.Result
	Stages   int `json:"stages,omitempty"`
	ExitCode int `json:"exit_code,omitempty"`
}

func eventFromResult(r stage.Result) Event {
	return Event{Type: "stage.result", Stage: r.StageID, Result: &r}
}
