package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	Log("decoded %d statements", 12)
	if err := Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.HasSuffix(string(data), "] decoded 12 statements\n") {
		t.Errorf("log = %q", data)
	}
}

func TestDisabledIsNoop(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	Log("nothing")
	if err := Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}
