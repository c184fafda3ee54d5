package stage

type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusWarn    Status = "WARN"
	StatusSkipped Status = "SKIPPED"
)

// Result is a stage's Gate Decision plus supporting detail. StatusFail
// aborts the pipeline; StatusWarn and StatusSkipped do not.
type Result struct {
	StageID string `json:"stage_id"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	// Evidence contains simple key-value string pairs supporting the result
	// (e.g. counts, artifact paths).
	Evidence map[string]string `json:"evidence,omitempty"`
}

// Gates reports whether the result terminates the pipeline.
func (r Result) Gates() bool {
	return r.Status == StatusFail
}

func Pass(id, message string) Result {
	return Result{StageID: id, Status: StatusPass, Message: message}
}

func Fail(id, message string) Result {
	return Result{StageID: id, Status: StatusFail, Message: message}
}

func Warn(id, message string) Result {
	return Result{StageID: id, Status: StatusWarn, Message: message}
}

func Skip(id, message string) Result {
	return Result{StageID: id, Status: StatusSkipped, Message: message}
}
