// Package launch starts an RDP client and decides, after a short
// observation window, whether the launch worked.
//
// A client that is still running when the window closes is a success; so is
// one that already exited cleanly. The child is never killed: after the
// window it keeps running on its own and is reaped in the background.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/robled/rocket-depot/internal/debug"
	"github.com/robled/rocket-depot/internal/hexid"
	"github.com/robled/rocket-depot/internal/rdp"
)

const (
	DefaultPollInterval = time.Second
	DefaultWindow       = 3 * time.Second
	// DefaultStderrLimit bounds how much of the child's stderr is read back.
	DefaultStderrLimit = 64 << 10
)

// Dispatcher runs a notification on the goroutine that owns the caller's
// state. The default runs it inline on the supervising goroutine.
type Dispatcher func(func())

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithPollInterval sets how often a running launch is checked.
func WithPollInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithWindow sets how long a client must survive to count as launched.
func WithWindow(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithDispatcher routes notifications through d.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Supervisor) {
		if d != nil {
			s.dispatch = d
		}
	}
}

// WithStderrLimit caps the bytes of stderr read into a Result.
func WithStderrLimit(n int) Option {
	return func(s *Supervisor) {
		if n > 0 {
			s.stderrLimit = n
		}
	}
}

// Supervisor launches clients. It is safe for concurrent use; every launch
// is supervised independently.
type Supervisor struct {
	pollInterval time.Duration
	window       time.Duration
	stderrLimit  int
	dispatch     Dispatcher

	// active counts launches whose window is still open.
	active atomic.Int64
}

// New returns a Supervisor with the default 1s poll and 3s window.
func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		pollInterval: DefaultPollInterval,
		window:       DefaultWindow,
		stderrLimit:  DefaultStderrLimit,
		dispatch:     func(f func()) { f() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State is Launching while any launch is inside its window, Idle otherwise.
func (s *Supervisor) State() State {
	if s.active.Load() > 0 {
		return Launching
	}
	return Idle
}

// Launch starts spec and returns without waiting. notify, if non-nil, is
// called exactly once through the dispatcher when the outcome is known.
//
// If the process cannot be started the error wraps ErrLaunchFailed and
// notify is never called.
func (s *Supervisor) Launch(spec rdp.LaunchSpec, notify func(Result)) (*Handle, error) {
	if len(spec.Argv) == 0 || spec.Argv[0] == "" {
		return nil, fmt.Errorf("%w: empty command", ErrLaunchFailed)
	}

	// Stderr goes to an unlinked temp file, not a pipe: the client must
	// outlive this process.
	capture, err := os.CreateTemp("", "rocket-depot-stderr-*")
	if err != nil {
		return nil, fmt.Errorf("%w: stderr capture: %w", ErrLaunchFailed, err)
	}
	_ = os.Remove(capture.Name())

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Stderr = capture
	// Own process group: a Ctrl-C aimed at us must not end the session.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	h := &Handle{
		id:     hexid.New(),
		spec:   spec,
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	h.state.Store(int32(Launching))

	if err := cmd.Start(); err != nil {
		capture.Close()
		debug.LogKV("launch", "start failed", "id", h.id, "argv0", spec.Argv[0], "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrLaunchFailed, spec.Argv[0], err)
	}
	h.pid = cmd.Process.Pid
	h.started = time.Now()
	s.active.Add(1)
	debug.LogKV("launch", "started", "id", h.id, "pid", h.pid, "client", spec.Client,
		"wrapped", spec.Wrapped, "argv", rdp.FormatCommand(spec.Argv))

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
		close(h.exited)
		// The result may still need to read the capture.
		<-h.done
		capture.Close()
		debug.LogKV("launch", "reaped", "id", h.id, "pid", h.pid, "after", time.Since(h.started).Truncate(time.Millisecond))
	}()

	go s.supervise(h, capture, waitCh, notify)
	return h, nil
}

// supervise waits for the child to exit or the window to close, whichever
// comes first, then settles the handle and delivers the result.
func (s *Supervisor) supervise(h *Handle, capture *os.File, waitCh <-chan error, notify func(Result)) {
	window := time.NewTimer(s.window)
	defer window.Stop()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var (
		res    Result
		polled int
	)
loop:
	for {
		select {
		case err := <-waitCh:
			res = s.exitResult(h, err, capture)
			break loop
		case <-window.C:
			res = s.windowResult(h, waitCh, capture)
			debug.LogKV("launch", "window closed", "id", h.id, "pid", h.pid, "polls", polled, "exited", res.Exited)
			break loop
		case <-ticker.C:
			polled++
			debug.LogKV("launch", "poll", "id", h.id, "pid", h.pid, "n", polled)
		}
	}

	s.active.Add(-1)
	h.settle(res)
	if notify != nil {
		s.dispatch(func() { notify(res) })
	}
}

// windowResult settles a launch whose window has closed. An exit that raced
// the timer still counts as an exit.
func (s *Supervisor) windowResult(h *Handle, waitCh <-chan error, capture *os.File) Result {
	select {
	case err := <-waitCh:
		return s.exitResult(h, err, capture)
	default:
	}
	res := h.baseResult()
	res.State = Succeeded
	return res
}

func (s *Supervisor) exitResult(h *Handle, waitErr error, capture *os.File) Result {
	res := h.baseResult()
	res.Exited = true

	code, err := exitCode(waitErr)
	if err != nil {
		res.State = Failed
		res.ExitCode = -1
		res.Err = fmt.Errorf("%w: %s: %w", ErrClientExited, h.spec.Client, err)
		debug.LogKV("launch", "wait failed", "id", h.id, "error", err)
		return res
	}
	res.ExitCode = code
	res.ErrorText = TruncateErrorText(readCapture(capture, s.stderrLimit), ErrorTextLimit)
	if successfulExit(h.spec.Client, code) {
		res.State = Succeeded
		debug.LogKV("launch", "client exited cleanly", "id", h.id, "code", code, "stderr_bytes", len(res.ErrorText))
		return res
	}

	res.State = Failed
	res.Err = &ClientExitError{
		Client:   h.spec.Client,
		ExitCode: code,
		Stderr:   strings.TrimSpace(res.ErrorText),
	}
	debug.LogKV("launch", "client failed", "id", h.id, "code", code, "stderr_bytes", len(res.ErrorText))
	return res
}

// exitCode interprets a Wait error. A signal-terminated child reports -1.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}

func readCapture(f *os.File, limit int) string {
	buf := make([]byte, limit)
	n, _ := f.ReadAt(buf, 0)
	return string(buf[:n])
}

// Handle tracks one launch.
type Handle struct {
	id      string
	spec    rdp.LaunchSpec
	pid     int
	started time.Time

	state  atomic.Int32
	mu     sync.Mutex
	result Result
	done   chan struct{}

	exited chan struct{}
}

// ID is the launch identifier used in logs and the failure journal.
func (h *Handle) ID() string { return h.id }

// PID of the started process (the terminal when the command is wrapped).
func (h *Handle) PID() int { return h.pid }

// State is Launching until the outcome is known.
func (h *Handle) State() State { return State(h.state.Load()) }

// Done is closed once the Result is available.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Exited is closed when the process has ended and been reaped, which may be
// long after Done.
func (h *Handle) Exited() <-chan struct{} { return h.exited }

// Result returns the outcome and whether it is known yet.
func (h *Handle) Result() (Result, bool) {
	select {
	case <-h.done:
	default:
		return Result{}, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, true
}

// Wait blocks until the outcome is known or ctx is done.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		res, _ := h.Result()
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (h *Handle) baseResult() Result {
	return Result{
		ID:       h.id,
		Client:   h.spec.Client,
		Argv:     append([]string(nil), h.spec.Argv...),
		Duration: time.Since(h.started),
	}
}

func (h *Handle) settle(res Result) {
	h.mu.Lock()
	h.result = res
	h.mu.Unlock()
	h.state.Store(int32(res.State))
	close(h.done)
}
