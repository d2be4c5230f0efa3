// Package log provides the process-wide diagnostic sink. Every worker of
// a batch writes through it, so lines from concurrent decompilations
// never interleave.
package log

import (
	"fmt"
	"io"
	"sync"
)

var (
	out io.Writer
	mu  sync.Mutex
)

// SetOutput sets the log output. Pass nil to disable logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func write(prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		fmt.Fprintf(out, prefix+format+"\n", args...)
	}
}

// Info writes an unprefixed message.
func Info(format string, args ...any) {
	write("", format, args...)
}

// Decompile writes a decompile-prefixed log message.
func Decompile(format string, args ...any) {
	write("[decompile] ", format, args...)
}

// Batch writes a batch-prefixed log message.
func Batch(format string, args ...any) {
	write("[batch] ", format, args...)
}

// Watch writes a watch-prefixed log message.
func Watch(format string, args ...any) {
	write("[watch] ", format, args...)
}

// Enabled returns true if logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return out != nil
}
