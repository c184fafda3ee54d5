// Package pylint wraps the lint tool's bit-encoded exit status in a typed
// outcome so the gating decision never touches raw status bits.
package pylint

// The lint tool ORs independent condition bits into its exit status:
//
//	1  fatal error (a file could not be processed)
//	2  error-severity findings
//	4  warning-severity findings
//	8  refactor findings
//	16 convention findings
//	32 usage error (bad invocation)
//
// Only bit 2 reports actual error findings; bits 1 and 32 describe the tool
// run itself and must not be conflated with lint failures.
const (
	bitFatal      = 1 << 0
	bitError      = 1 << 1
	bitWarning    = 1 << 2
	bitRefactor   = 1 << 3
	bitConvention = 1 << 4
	bitUsage      = 1 << 5
)

// Outcome is the typed result of a lint run.
type Outcome int

const (
	// OutcomeClean means no error-severity findings. Warning, refactor and
	// convention bits may still be set; they do not gate the pipeline.
	OutcomeClean Outcome = iota

	// OutcomeFindings means the error bit is set: the gate must fail.
	OutcomeFindings

	// OutcomeToolError means the run itself was unsound (fatal or usage
	// bit, without error findings). Surfaced as a warning, not a gate
	// failure.
	OutcomeToolError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClean:
		return "clean"
	case OutcomeFindings:
		return "findings"
	case OutcomeToolError:
		return "tool-error"
	default:
		return "unknown"
	}
}

// Decode maps an exit status onto an Outcome. Error findings win over tool
// errors: a run that produced findings gates the pipeline even if the tool
// also tripped over a file.
func Decode(exitStatus int) Outcome {
	switch {
	case exitStatus&bitError != 0:
		return OutcomeFindings
	case exitStatus&(bitFatal|bitUsage) != 0:
		return OutcomeToolError
	default:
		return OutcomeClean
	}
}
