// Package exitcode defines named exit codes for the semantic-diff CLI.
//
// Findings never change the exit code. A non-zero code means the report
// could not be produced.
package exitcode

const (
	Success     = 0   // Report written
	Error       = 1   // Invalid args, misconfiguration, report not writable
	Interrupted = 130 // SIGINT/SIGTERM received
)

// Name returns the human-readable name for the given exit code.
// Unknown codes return "unknown".
func Name(code int) string {
	switch code {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case Interrupted:
		return "Interrupted"
	default:
		return "unknown"
	}
}
