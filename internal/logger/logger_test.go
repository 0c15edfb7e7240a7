package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestDebugSuppressedWhenQuiet(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetVerbose(false)

	Debug("hidden %d", 1)
	Info("also hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output in quiet mode, got %q", buf.String())
	}
}

func TestVerboseOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetVerbose(true)
	defer SetVerbose(false)

	Section("Search Execution")
	Debug("scanning %d records", 50)
	Info("done")

	out := buf.String()
	for _, want := range []string{"=== Search Execution ===", "[DEBUG] scanning 50 records", "[INFO] done"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestWarnAndErrorAlwaysPrint(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetVerbose(false)

	Warn("disk %s", "full")
	Error("boom")

	out := buf.String()
	if !strings.Contains(out, "[WARN] disk full") {
		t.Errorf("expected warning in output, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] boom") {
		t.Errorf("expected error in output, got %q", out)
	}
}
