// Package codes maps generator exit codes to compilation results.
//
// The integer values cross the process boundary to the external generator
// tool and must stay stable; never renumber an existing result.
package codes

// Result is the outcome of one generation run.
type Result int

const (
	Succeeded               Result = 0
	Canceled                Result = 1
	UpToDate                Result = 2
	FailedDueToHeaderChange Result = 3
	OtherCompilationError   Result = 5
	Unsupported             Result = 6
	Unknown                 Result = 7
	CrashOrAssert           Result = 8
)

// descriptions maps results to human-readable messages
var descriptions = map[Result]string{
	Succeeded:               "Succeeded",
	Canceled:                "Canceled",
	UpToDate:                "Already up to date",
	FailedDueToHeaderChange: "Generated code changed unexpectedly",
	OtherCompilationError:   "Compilation error",
	Unsupported:             "Unsupported",
	Unknown:                 "Unknown error",
	CrashOrAssert:           "Crash or assertion failure",
}

func (r Result) String() string {
	if msg, ok := descriptions[r]; ok {
		return msg
	}

	return "Unknown error"
}

// IsSuccess returns true if the result indicates generation succeeded or was
// already up to date.
func (r Result) IsSuccess() bool {
	return r == Succeeded || r == UpToDate
}

// FromExitCode classifies a raw generator exit code. On POSIX hosts a
// process killed by signal N exits with 128+N: SIGINT (130) means the run
// was canceled, anything else at or above 128 is a crash or assert.
func FromExitCode(code int) Result {
	if code >= 128 {
		if code == 130 {
			return Canceled
		}

		return CrashOrAssert
	}

	switch Result(code) {
	case Succeeded, Canceled, UpToDate, FailedDueToHeaderChange,
		OtherCompilationError, Unsupported:
		return Result(code)
	}

	return Unknown
}
