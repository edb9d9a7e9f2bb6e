package launch

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/robled/rocket-depot/internal/config"
)

var (
	// ErrLaunchFailed is returned by Launch when the process could not be
	// started at all.
	ErrLaunchFailed = errors.New("failed to launch client")
	// ErrClientExited marks a client that exited with an error inside the
	// observation window.
	ErrClientExited = errors.New("client exited with error")
)

// rdesktopBenignExit is the status rdesktop uses when the session ends
// normally because the user logged off.
const rdesktopBenignExit = 62

// ErrorTextLimit is the number of runes of stderr kept in a Result.
const ErrorTextLimit = 300

// State is the lifecycle position of a launch, or of the supervisor as a
// whole (Idle / Launching).
type State int

const (
	Idle State = iota
	Launching
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Launching:
		return "launching"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ClientExitError describes a client that exited unsuccessfully before the
// window closed.
type ClientExitError struct {
	Client   config.Client
	ExitCode int
	Stderr   string
}

func (e *ClientExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Client, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ClientExitError) Unwrap() error { return ErrClientExited }

// Result is the outcome of one launch. Each launch gets its own Result.
type Result struct {
	ID       string
	Client   config.Client
	Argv     []string
	State    State
	Exited   bool // the process ended inside the window
	ExitCode int
	// ErrorText is the stderr of a process that exited inside the window,
	// cut to ErrorTextLimit runes. It is kept for clean exits too.
	ErrorText string
	Err       error
	Duration  time.Duration
}

// OK reports whether the launch is considered successful.
func (r Result) OK() bool {
	return r.State == Succeeded
}

// successfulExit applies the per-client success rule for an exit code.
func successfulExit(client config.Client, code int) bool {
	if code == 0 {
		return true
	}
	return client == config.ClientRdesktop && code == rdesktopBenignExit
}

// TruncateErrorText cuts s to limit runes and appends "..." when something
// was removed. Invalid UTF-8 is replaced first.
func TruncateErrorText(s string, limit int) string {
	s = strings.ToValidUTF8(s, "�")
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
