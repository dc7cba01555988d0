//go:build !windows

package main

import "testing"

func TestHandleServiceCommand_NonWindows(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"program only", []string{"vision_backend"}},
		{"install", []string{"vision_backend", "install"}},
		{"unknown", []string{"vision_backend", "bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if HandleServiceCommand(tt.args) {
				t.Error("service commands are Windows-only and should not be handled")
			}
		})
	}
}

func TestRunAsService_NonWindows(t *testing.T) {
	isService, err := RunAsService()
	if err != nil {
		t.Errorf("RunAsService returned error: %v", err)
	}
	if isService {
		t.Error("RunAsService should report interactive mode on non-Windows")
	}
}
