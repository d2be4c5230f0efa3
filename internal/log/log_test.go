package log

import (
	"strings"
	"sync"
	"testing"
)

func TestPrefixes(t *testing.T) {
	var b strings.Builder
	SetOutput(&b)
	defer SetOutput(nil)

	Info("plain %d", 1)
	Decompile("game/script.rpyc: %s", "ok")
	Batch("3 files")
	Watch("changed")

	want := "plain 1\n[decompile] game/script.rpyc: ok\n[batch] 3 files\n[watch] changed\n"
	if got := b.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDisabled(t *testing.T) {
	SetOutput(nil)
	if Enabled() {
		t.Fatal("Enabled() = true with no output")
	}
	// must not panic
	Decompile("dropped")
}

func TestConcurrentLinesStayWhole(t *testing.T) {
	var b strings.Builder
	SetOutput(&b)
	defer SetOutput(nil)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Batch("worker %02d done", i)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[batch] worker ") || !strings.HasSuffix(line, " done") {
			t.Errorf("torn line %q", line)
		}
	}
}
