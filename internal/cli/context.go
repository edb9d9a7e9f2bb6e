package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robled/rocket-depot/internal/config"
	"github.com/robled/rocket-depot/internal/debug"
	"github.com/robled/rocket-depot/internal/failedlaunch"
	"github.com/robled/rocket-depot/internal/rdp"
)

// Environment overrides.
const (
	envConfig     = "ROCKET_DEPOT_CONFIG"
	envTerminal   = "ROCKET_DEPOT_TERMINAL"
	envKnownHosts = "ROCKET_DEPOT_KNOWN_HOSTS"
)

// configPath resolves the profile file: --config, then $ROCKET_DEPOT_CONFIG,
// then ~/.config/rocket-depot/config.ini.
func configPath(cmd *cobra.Command, env config.Environment) string {
	if p, _ := cmd.Flags().GetString("config"); strings.TrimSpace(p) != "" {
		return strings.TrimSpace(p)
	}
	if p := strings.TrimSpace(os.Getenv(envConfig)); p != "" {
		return p
	}
	return config.ConfigPath(env)
}

// openStore opens the profile file, creating its directory and the defaults
// profile when missing. A read-only location is not fatal: the defaults
// stay in memory and a warning goes to stderr.
func openStore(cmd *cobra.Command, env config.Environment) (*config.Store, error) {
	path := configPath(cmd, env)
	if path == config.ConfigPath(env) {
		if err := config.EnsureDir(env); err != nil {
			debug.LogKV("cli", "config dir not created", "error", err)
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		debug.LogKV("cli", "config dir not created", "path", path, "error", err)
	}

	store, err := config.Open(path, config.DefaultOptions(env))
	if err != nil {
		if store != nil && errors.Is(err, config.ErrConfigWriteFailed) {
			warn(cmd.ErrOrStderr(), "%v", err)
			return store, nil
		}
		return nil, err
	}
	return store, nil
}

// terminalPrefix returns the wrapper from $ROCKET_DEPOT_TERMINAL, or nil for
// the built-in xterm default.
func terminalPrefix() ([]string, error) {
	prefix, err := rdp.ParseTerminal(os.Getenv(envTerminal))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envTerminal, err)
	}
	return prefix, nil
}

func knownHostsPath(env config.Environment) string {
	if p := strings.TrimSpace(os.Getenv(envKnownHosts)); p != "" {
		return p
	}
	return rdp.DefaultKnownHostsPath(env.HomeDir)
}

func openJournal(env config.Environment) *failedlaunch.Journal {
	return failedlaunch.New(failedlaunch.Dir(env))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%sWarning:%s %s\n", colorYellow, colorReset, fmt.Sprintf(format, args...))
}
