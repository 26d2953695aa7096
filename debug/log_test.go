package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledWritesNothing(t *testing.T) {
	Disable()
	Log("test", "hello %d", 1)
	if Enabled() {
		t.Fatal("Enabled() = true after Disable")
	}
}

func TestLogWriter(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	Log("transport", "play from=%.1f", 1.5)
	line := buf.String()
	if !strings.Contains(line, "transport") || !strings.Contains(line, "play from=1.5") {
		t.Errorf("unexpected log line %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("log line not newline-terminated: %q", line)
	}
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(5, "frame", "tick")
	}
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Errorf("LogEvery(5) over 10 calls wrote %d lines, want 2", got)
	}
	if !strings.Contains(buf.String(), "count=10") {
		t.Errorf("missing count in %q", buf.String())
	}
}

func TestEnableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	Log("test", "to file")
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "debug logging started") || !strings.Contains(string(data), "to file") {
		t.Errorf("log file content %q", data)
	}
}
