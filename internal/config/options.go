package config

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Client identifies a supported RDP client program.
type Client string

const (
	ClientXFreeRDP Client = "xfreerdp"
	ClientRdesktop Client = "rdesktop"
)

// Clients lists the supported clients in display order.
var Clients = []Client{ClientXFreeRDP, ClientRdesktop}

// ErrUnknownClient is returned for a program name outside the supported set.
var ErrUnknownClient = errors.New("unknown rdp client")

// ParseClient validates a program name from a flag or the config file.
func ParseClient(s string) (Client, error) {
	c := Client(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", errorf(ErrUnknownClient, "%q (valid: xfreerdp, rdesktop)", s)
	}
	return c, nil
}

// Valid reports whether c is one of the supported clients.
func (c Client) Valid() bool {
	return c == ClientXFreeRDP || c == ClientRdesktop
}

func (c Client) String() string { return string(c) }

// Config file keys, in the order they are written to a section.
const (
	KeyHost         = "host"
	KeyUser         = "user"
	KeyGeometry     = "geometry"
	KeyProgram      = "program"
	KeyHomeShare    = "homeshare"
	KeyGrabKeyboard = "grabkeyboard"
	KeyFullscreen   = "fullscreen"
	KeyCLIOptions   = "clioptions"
	KeyTerminal     = "terminal"
)

// Keys is the fixed set of options stored in every profile section.
var Keys = []string{
	KeyHost,
	KeyUser,
	KeyGeometry,
	KeyProgram,
	KeyHomeShare,
	KeyGrabKeyboard,
	KeyFullscreen,
	KeyCLIOptions,
	KeyTerminal,
}

// Options is one connection's settings. Values are kept as typed fields in
// memory; the string form only exists in the config file.
type Options struct {
	Host         string
	User         string // may be in DOMAIN\user form
	Geometry     string // "1024x768" or a monitor percentage such as "80%"
	Program      Client // empty when the section does not name one
	HomeShare    bool
	GrabKeyboard bool
	Fullscreen   bool
	CLIOptions   string // extra client arguments, tokenised before launch
	Terminal     bool
}

// Values returns the config-file form of o with all nine keys present.
// Surrounding whitespace is not part of a value in the file, so string
// fields are trimmed.
func (o Options) Values() map[string]string {
	return map[string]string{
		KeyHost:         strings.TrimSpace(o.Host),
		KeyUser:         strings.TrimSpace(o.User),
		KeyGeometry:     strings.TrimSpace(o.Geometry),
		KeyProgram:      strings.TrimSpace(string(o.Program)),
		KeyHomeShare:    formatBool(o.HomeShare),
		KeyGrabKeyboard: formatBool(o.GrabKeyboard),
		KeyFullscreen:   formatBool(o.Fullscreen),
		KeyCLIOptions:   strings.TrimSpace(o.CLIOptions),
		KeyTerminal:     formatBool(o.Terminal),
	}
}

// OptionsFromValues is the inverse of Values. Missing keys read as empty
// strings, so a missing boolean is false and a missing program is empty.
func OptionsFromValues(values map[string]string) Options {
	return Options{
		Host:         values[KeyHost],
		User:         values[KeyUser],
		Geometry:     values[KeyGeometry],
		Program:      Client(strings.TrimSpace(values[KeyProgram])),
		HomeShare:    parseBool(values[KeyHomeShare]),
		GrabKeyboard: parseBool(values[KeyGrabKeyboard]),
		Fullscreen:   parseBool(values[KeyFullscreen]),
		CLIOptions:   values[KeyCLIOptions],
		Terminal:     parseBool(values[KeyTerminal]),
	}
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// parseBool accepts "true" as written by formatBool plus the spellings people
// use when hand-editing the file. Anything else, including "", is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true
	default:
		return false
	}
}

// Environment carries the per-user facts the core needs. It is filled once at
// the edge of the program so the store and the command builder stay pure.
type Environment struct {
	HomeDir  string
	Username string
}

// CurrentEnvironment reads the home directory and login name of the running
// user.
func CurrentEnvironment() Environment {
	env := Environment{}
	if home, err := os.UserHomeDir(); err == nil {
		env.HomeDir = home
	}
	if name := strings.TrimSpace(os.Getenv("USER")); name != "" {
		env.Username = name
	} else if u, err := user.Current(); err == nil {
		env.Username = u.Username
	}
	if env.HomeDir == "" {
		env.HomeDir = os.TempDir()
	}
	return env
}

// DefaultOptions returns the built-in values used to seed the defaults
// profile on first run.
func DefaultOptions(env Environment) Options {
	username := strings.TrimSpace(env.Username)
	if username == "" {
		username = "user"
	}
	return Options{
		Host:     "host.example.com",
		User:     username,
		Geometry: "1024x768",
		Program:  ClientXFreeRDP,
	}
}

// Dir returns ~/.config/rocket-depot for env.
func Dir(env Environment) string {
	return filepath.Join(env.HomeDir, ".config", "rocket-depot")
}

// ConfigPath returns the profile file path for env.
func ConfigPath(env Environment) string {
	return filepath.Join(Dir(env), "config.ini")
}

// EnsureDir creates the config directory. Callers log the error and carry on;
// a later save reports the real write failure.
func EnsureDir(env Environment) error {
	return os.MkdirAll(Dir(env), 0o700)
}
