// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package exit

import (
	"bytes"
	"os"
	"testing"
)

func TestSuccess(t *testing.T) {
	result := Success("done")
	if result.ExitCode != 0 {
		t.Errorf("Success() ExitCode = %d, want 0", result.ExitCode)
	}
	if result.Output != os.Stdout {
		t.Error("Success() expected output to stdout")
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		code   int
		msg    string
	}{
		{"Error", Error("failed"), 1, "failed"},
		{"Errorf", Errorf("bad %s: %d", "thing", 3), 1, "bad thing: 3"},
		{"Usagef", Usagef("usage: %s", "jflat"), 2, "usage: jflat"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.result.ExitCode != tc.code {
				t.Errorf("ExitCode = %d, want %d", tc.result.ExitCode, tc.code)
			}
			if tc.result.Message != tc.msg {
				t.Errorf("Message = %q, want %q", tc.result.Message, tc.msg)
			}
			if tc.result.Output != os.Stderr {
				t.Error("expected output to stderr")
			}
		})
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	r := &Result{Output: &buf, ExitCode: 1, Message: "message\n"}
	r.Print()
	if got := buf.String(); got != "message\n" {
		t.Errorf("Print() wrote %q, want %q", got, "message\n")
	}
}
