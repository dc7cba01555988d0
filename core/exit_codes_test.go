package core

import (
	"os"
	"syscall"
	"testing"
)

func TestExitCodeForSignal(t *testing.T) {
	tests := []struct {
		name     string
		sig      os.Signal
		expected int
	}{
		{"no signal", nil, ExitCodeSuccess},
		{"interrupt", os.Interrupt, ExitCodeSIGINT},
		{"sigterm", syscall.SIGTERM, ExitCodeSIGTERM},
		{"unhandled signal", syscall.SIGHUP, ExitCodeSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeForSignal(tt.sig); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}
