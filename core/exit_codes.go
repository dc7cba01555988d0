package core

import (
	"os"
	"syscall"
)

// Process exit codes. Signal-initiated shutdowns report 128 + signal
// number so supervisors (systemd, the Windows service wrapper) can tell
// an operator-requested stop from a crash.
const (
	// ExitCodeSuccess is a clean, unsignalled shutdown.
	ExitCodeSuccess = 0

	// ExitCodeError covers startup failures, listener failures and
	// shutdowns that did not complete cleanly.
	ExitCodeError = 1

	// ExitCodeSIGINT reports a graceful shutdown triggered by Ctrl+C.
	ExitCodeSIGINT = 130

	// ExitCodeSIGTERM reports a graceful shutdown triggered by SIGTERM.
	ExitCodeSIGTERM = 143
)

// ExitCodeForSignal maps the shutdown-triggering signal to the exit code
// the process should report. A nil signal means the shutdown was not
// signal-initiated.
func ExitCodeForSignal(sig os.Signal) int {
	switch sig {
	case nil:
		return ExitCodeSuccess
	case os.Interrupt:
		return ExitCodeSIGINT
	case syscall.SIGTERM:
		return ExitCodeSIGTERM
	default:
		return ExitCodeSuccess
	}
}
