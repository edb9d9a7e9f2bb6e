package rdp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/robled/rocket-depot/internal/config"
	"github.com/robled/rocket-depot/internal/display"
)

var (
	// ErrNoHost is returned when the profile has no host to connect to.
	ErrNoHost = errors.New("no host or IP address given")
	// ErrInvalidCLIOptions is returned when extra options cannot be tokenised.
	ErrInvalidCLIOptions = errors.New("invalid extra CLI options")
)

// DefaultTerminal keeps the window open after the client exits so its
// messages stay readable.
var DefaultTerminal = []string{"xterm", "-hold", "-e"}

// Flags that make xfreerdp non-interactive. Without them it may prompt on
// the console for a password or a certificate decision.
var (
	nlaDisableFlags = []string{"-sec-nla", "/sec:nla:off"}
	certIgnoreFlags = []string{"/cert-ignore", "/cert:ignore"}
)

// WrapReason records why a command was wrapped in a terminal.
type WrapReason string

const (
	WrapNLAPrompt      WrapReason = "nla-prompt"
	WrapUnknownCert    WrapReason = "unknown-certificate"
	WrapTerminalOption WrapReason = "terminal-option"
)

// Env holds the local facts the builder needs.
type Env struct {
	HomeDir        string
	KnownHostsPath string
	// Terminal is the wrapper prefix; nil means DefaultTerminal.
	Terminal []string
	// Monitor is only called for percentage geometries.
	Monitor func() (display.Monitor, error)
}

// LaunchSpec is a ready-to-exec command for one connection attempt.
type LaunchSpec struct {
	Client      config.Client
	Argv        []string
	Wrapped     bool
	WrapReasons []WrapReason
	prefixLen   int
}

// ClientArgv returns Argv without the terminal prefix.
func (s LaunchSpec) ClientArgv() []string {
	return s.Argv[s.prefixLen:]
}

// String formats Argv for display, quoting arguments a shell would split.
func (s LaunchSpec) String() string {
	return FormatCommand(s.Argv)
}

// BuildLaunchSpec maps a profile and a client choice to an argument vector.
//
// Values are placed into argv as-is and never pass through a shell, so a
// DOMAIN\user name reaches the client byte for byte. Only the free-form
// CLIOptions string is split into tokens.
func BuildLaunchSpec(opts config.Options, client config.Client, env Env) (LaunchSpec, error) {
	cs, ok := SpecFor(client)
	if !ok {
		return LaunchSpec{}, fmt.Errorf("%w: %q", config.ErrUnknownClient, client)
	}
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		return LaunchSpec{}, ErrNoHost
	}

	args := append([]string(nil), cs.Base...)

	if user := strings.TrimSpace(opts.User); user != "" {
		args = appendFlag(args, cs.User, user)
	}

	if strings.TrimSpace(opts.Geometry) != "" {
		var mon display.Monitor
		if IsPercent(opts.Geometry) {
			if env.Monitor == nil {
				return LaunchSpec{}, fmt.Errorf("geometry %q: %w", opts.Geometry, display.ErrNoMonitor)
			}
			m, err := env.Monitor()
			if err != nil {
				return LaunchSpec{}, fmt.Errorf("geometry %q: %w", opts.Geometry, err)
			}
			mon = m
		}
		geo, err := ResolveGeometry(opts.Geometry, mon)
		if err != nil {
			return LaunchSpec{}, err
		}
		args = appendFlag(args, cs.Geometry, geo)
	}

	if opts.Fullscreen {
		args = append(args, cs.Fullscreen)
	}
	// The client grabs the keyboard by default; the flag turns that off.
	if !opts.GrabKeyboard {
		args = append(args, cs.GrabKeyboard)
	}
	if opts.HomeShare {
		args = append(args, fmt.Sprintf(cs.HomeShare, env.HomeDir))
	}

	if strings.TrimSpace(opts.CLIOptions) != "" {
		extra, err := shlex.Split(opts.CLIOptions)
		if err != nil {
			return LaunchSpec{}, fmt.Errorf("%w: %q: %w", ErrInvalidCLIOptions, opts.CLIOptions, err)
		}
		args = append(args, extra...)
	}

	args = appendFlag(args, cs.Host, host)

	spec := LaunchSpec{Client: client, Argv: args}
	spec.WrapReasons = wrapReasons(client, args, host, env.KnownHostsPath, opts.Terminal)
	if len(spec.WrapReasons) > 0 {
		prefix := env.Terminal
		if len(prefix) == 0 {
			prefix = DefaultTerminal
		}
		spec.Argv = append(append([]string(nil), prefix...), args...)
		spec.Wrapped = true
		spec.prefixLen = len(prefix)
	}
	return spec, nil
}

// wrapReasons lists every condition that calls for a visible terminal. The
// command is wrapped once no matter how many apply.
func wrapReasons(client config.Client, args []string, host, knownHostsPath string, terminal bool) []WrapReason {
	var reasons []WrapReason
	if client == config.ClientXFreeRDP {
		if !containsAny(args, nlaDisableFlags) {
			reasons = append(reasons, WrapNLAPrompt)
		}
		if !containsAny(args, certIgnoreFlags) && !KnownHost(knownHostsPath, host) {
			reasons = append(reasons, WrapUnknownCert)
		}
	}
	if terminal {
		reasons = append(reasons, WrapTerminalOption)
	}
	return reasons
}

func containsAny(args, flags []string) bool {
	for _, a := range args {
		for _, f := range flags {
			if a == f {
				return true
			}
		}
	}
	return false
}

// ParseTerminal splits a terminal prefix such as "gnome-terminal --" into
// tokens.
func ParseTerminal(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return shlex.Split(s)
}

// FormatCommand renders argv as a single line, quoting arguments that
// contain whitespace, quotes or backslashes.
func FormatCommand(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, arg := range argv {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if strings.ContainsAny(arg, " \t\n\"'\\$") {
		return strconv.Quote(arg)
	}
	return arg
}
