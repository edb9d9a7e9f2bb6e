// Package debug is a process-wide diagnostic logger.
//
// It stays silent unless Init is called (--debug, or ROCKET_DEPOT_DEBUG_ENABLED
// in the environment). Once initialized, every line carries a timestamp, the
// elapsed time since start, the goroutine, the component and the caller, so a
// launch can be followed from command building through to the child's exit.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/robled/rocket-depot/internal/hexid"
)

const (
	// EnvEnabled turns the logger on without the --debug flag.
	EnvEnabled = "ROCKET_DEPOT_DEBUG_ENABLED"
	// EnvLogPath appends to a fixed file instead of creating a new one.
	EnvLogPath = "ROCKET_DEPOT_DEBUG_LOG_PATH"
)

var (
	logger   *Logger
	loggerMu sync.RWMutex
)

// Logger writes debug lines to one file.
type Logger struct {
	mu        sync.Mutex
	file      *os.File
	path      string
	startedAt time.Time
}

// Dir returns the directory new log files are created in.
func Dir(home string) string {
	return filepath.Join(home, ".config", "rocket-depot", "debug")
}

// Init opens the global log and returns its path. Calling it again returns
// the already open file.
func Init() (string, error) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger != nil {
		return logger.path, nil
	}

	path, id, err := resolveLogPath()
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return "", fmt.Errorf("debug: open log %s: %w", path, err)
	}

	now := time.Now()
	fmt.Fprintf(f, "=== rocket-depot debug log ===\nstarted: %s\npid: %d\nargs: %s\nlog id: %s\n===\n\n",
		now.Format(time.RFC3339Nano), os.Getpid(), strings.Join(os.Args[1:], " "), id)

	logger = &Logger{file: f, path: path, startedAt: now}
	return path, nil
}

// Close writes a trailer and closes the file. Safe to call when not initialized.
func Close() {
	loggerMu.Lock()
	l := logger
	logger = nil
	loggerMu.Unlock()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.file, "\n=== closed after %s ===\n", time.Since(l.startedAt).Truncate(time.Millisecond))
	l.file.Close()
}

// Enabled reports whether Init has been called.
func Enabled() bool {
	return current() != nil
}

// Path returns the open log file, or "".
func Path() string {
	if l := current(); l != nil {
		return l.path
	}
	return ""
}

// ShouldEnableFromEnv reports whether the environment asks for debug logging.
// A log path alone is enough unless the toggle says otherwise.
func ShouldEnableFromEnv() bool {
	path := strings.TrimSpace(os.Getenv(EnvLogPath))
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvEnabled))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return path != ""
	}
}

// Log writes msg. No-op when disabled.
func Log(component, msg string) {
	if l := current(); l != nil {
		l.write(component, msg)
	}
}

// Logf writes a formatted line. No-op when disabled.
func Logf(component, format string, args ...any) {
	if l := current(); l != nil {
		l.write(component, fmt.Sprintf(format, args...))
	}
}

// LogKV writes msg followed by key=value pairs.
//
//	debug.LogKV("launch", "started", "id", id, "pid", pid)
func LogKV(component, msg string, kvs ...any) {
	l := current()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(kvs); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kvs[i], kvs[i+1])
	}
	l.write(component, b.String())
}

func current() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// write appends one line:
// TIME +ELAPSED [G id] [component] file:line | msg
func (l *Logger) write(component, msg string) {
	now := time.Now()
	caller := "??:0"
	if _, file, line, ok := runtime.Caller(2); ok {
		if idx := strings.LastIndex(file, "/internal/"); idx >= 0 {
			file = file[idx+1:]
		} else if idx := strings.LastIndex(file, "/cmd/"); idx >= 0 {
			file = file[idx+1:]
		}
		caller = fmt.Sprintf("%s:%d", file, line)
	}

	text := fmt.Sprintf("%s +%10s [G%-5d] [%-8s] %-28s | %s\n",
		now.Format("15:04:05.000000"),
		now.Sub(l.startedAt).Truncate(time.Microsecond),
		goroutineID(),
		component,
		caller,
		msg,
	)

	l.mu.Lock()
	l.file.WriteString(text)
	l.mu.Unlock()
}

func resolveLogPath() (path, id string, err error) {
	if p := strings.TrimSpace(os.Getenv(EnvLogPath)); p != "" {
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return "", "", fmt.Errorf("debug: create dir for %s: %w", p, err)
		}
		return p, "inherited", nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("debug: user home dir: %w", err)
	}
	dir := Dir(home)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", "", fmt.Errorf("debug: create dir %s: %w", dir, err)
	}
	id = hexid.New()
	name := fmt.Sprintf("%s_%s.log", time.Now().Format("20060102T150405"), id)
	return filepath.Join(dir, name), id, nil
}

// goroutineID parses the id out of "goroutine 123 [running]:".
func goroutineID() int64 {
	var buf [64]byte
	s := string(buf[:runtime.Stack(buf[:], false)])
	s, ok := strings.CutPrefix(s, "goroutine ")
	if !ok {
		return 0
	}
	var id int64
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
