// Package detect finds the external programs a connection depends on.
package detect

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/robled/rocket-depot/internal/config"
	"github.com/robled/rocket-depot/internal/debug"
	"github.com/robled/rocket-depot/internal/rdp"
)

const versionProbeTimeout = 1500 * time.Millisecond

var semverRE = regexp.MustCompile(`(?i)\bv?(\d+\.\d+(?:\.\d+)?(?:[-+][0-9A-Za-z.-]+)?)\b`)

// Role says what a program is needed for.
type Role string

const (
	RoleClient   Role = "client"
	RoleTerminal Role = "terminal"
	RoleDisplay  Role = "display"
)

// Tool is a program to look for.
type Tool struct {
	Name string
	Role Role
	// Binaries are tried in order; the first one found wins.
	Binaries []string
	// VersionArgs are tried in order until one prints a version. Nil skips
	// the probe, which matters for programs that open a window when run.
	VersionArgs [][]string
}

// Detected is the outcome for one Tool.
type Detected struct {
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// Tools lists what a complete installation has: both RDP clients, the
// terminal used for wrapped launches and xrandr for percentage geometries.
func Tools(terminal []string) []Tool {
	term := rdp.DefaultTerminal[0]
	if len(terminal) > 0 && terminal[0] != "" {
		term = terminal[0]
	}
	return []Tool{
		{
			Name:        string(config.ClientXFreeRDP),
			Role:        RoleClient,
			Binaries:    []string{"xfreerdp", "xfreerdp3"},
			VersionArgs: [][]string{{"--version"}, {"/version"}},
		},
		{
			Name:     string(config.ClientRdesktop),
			Role:     RoleClient,
			Binaries: []string{"rdesktop"},
			// rdesktop prints its version in the usage text.
			VersionArgs: [][]string{{"--version"}, {}},
		},
		{
			Name:        term,
			Role:        RoleTerminal,
			Binaries:    []string{term},
			VersionArgs: [][]string{{"-version"}, {"--version"}},
		},
		{
			Name:        "xrandr",
			Role:        RoleDisplay,
			Binaries:    []string{"xrandr"},
			VersionArgs: [][]string{{"--version"}},
		},
	}
}

// Scan checks every tool. It never fails; missing programs are reported with
// Found unset.
func Scan(ctx context.Context, tools []Tool) []Detected {
	out := make([]Detected, 0, len(tools))
	for _, tool := range tools {
		d := Detected{Name: tool.Name, Role: tool.Role}
		for _, bin := range tool.Binaries {
			if path, ok := LookPath(bin); ok {
				d.Found = true
				d.Path = path
				d.Version = detectVersion(ctx, path, tool.VersionArgs)
				break
			}
		}
		debug.LogKV("detect", "tool", "name", d.Name, "found", d.Found, "path", d.Path, "version", d.Version)
		out = append(out, d)
	}
	return out
}

// LookPath finds binary on PATH or in the usual install directories and
// returns its absolute, symlink-resolved path. A binary given as a path is
// checked as is.
func LookPath(binary string) (string, bool) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "", false
	}
	if strings.ContainsRune(binary, filepath.Separator) {
		return executablePath(binary)
	}

	var candidates []string
	if p, err := exec.LookPath(binary); err == nil {
		candidates = append(candidates, p)
	}
	for _, dir := range knownInstallDirs() {
		candidates = append(candidates, filepath.Join(dir, binary))
	}
	for _, path := range candidates {
		if real, ok := executablePath(path); ok {
			return real, true
		}
	}
	return "", false
}

// knownInstallDirs is a variable so tests can confine the search to PATH.
var knownInstallDirs = func() []string {
	dirs := []string{"/usr/local/bin", "/usr/bin", "/bin", "/snap/bin"}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".local", "bin"), filepath.Join(home, "bin"))
	}
	return dirs
}

func executablePath(path string) (string, bool) {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() || fi.Mode()&0o111 == 0 {
		return "", false
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		abs = resolved
	}
	return abs, true
}

func detectVersion(ctx context.Context, path string, attempts [][]string) string {
	if len(attempts) == 0 {
		return ""
	}
	for _, args := range attempts {
		out, err := runVersionProbe(ctx, path, args)
		if err != nil && out == "" {
			continue
		}
		if v := parseVersion(out); v != "" {
			return v
		}
	}
	return "unknown"
}

func runVersionProbe(ctx context.Context, path string, args []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, args...)
	output, err := cmd.CombinedOutput()
	out := strings.TrimSpace(string(output))
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out, ctx.Err()
	}
	return out, err
}

// parseVersion picks the first version-looking token, falling back to the
// first line of output.
func parseVersion(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return ""
	}
	if m := semverRE.FindStringSubmatch(output); len(m) > 1 {
		return m[1]
	}
	line, _, _ := strings.Cut(output, "\n")
	line = strings.TrimSpace(line)
	if len(line) > 48 {
		line = line[:48]
	}
	return line
}
