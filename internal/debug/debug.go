package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xyproto/env/v2"
)

// EnvVar names the file debug messages are appended to.
const EnvVar = "UNRPYC_DEBUG"

var (
	logFile *os.File
	opened  bool
	mu      sync.Mutex
)

// Init opens path for debug logging. An empty path disables it.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()
	opened = true
	return initLocked(path)
}

// initLocked does the actual init work. Caller must hold mu.
func initLocked(path string) error {
	if path == "" {
		logFile = nil
		return nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}
	logFile = f
	return nil
}

// Close closes the debug log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

// Log writes a timestamped message when debug logging is on. The first
// call without Init reads the path from UNRPYC_DEBUG.
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !opened {
		opened = true
		_ = initLocked(env.Str(EnvVar))
	}
	if logFile == nil {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(logFile, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
}
