// Package buildinfo reports what binary is running.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const Program = "rocket-depot"

const devVersion = "0.1.0-dev"

// Set with -ldflags "-X github.com/robled/rocket-depot/internal/buildinfo.Version=...".
var (
	Version   = devVersion
	Commit    = ""
	BuildDate = ""
)

// Info is the resolved build metadata.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// String is the one-line form printed by "rocket-depot version".
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", Program, i.Version, i.Commit, i.BuildDate, i.GoVersion)
}

// Current merges linker values with the module and VCS data the Go
// toolchain embeds. Linker values win.
func Current() Info {
	info := Info{
		Version:   strings.TrimSpace(Version),
		Commit:    strings.TrimSpace(Commit),
		BuildDate: strings.TrimSpace(BuildDate),
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		mergeBuildInfo(&info, bi)
	}
	if t, err := time.Parse(time.RFC3339, info.BuildDate); err == nil {
		info.BuildDate = t.UTC().Format("2006-01-02 15:04 UTC")
	}
	for _, f := range []*string{&info.Version, &info.Commit, &info.BuildDate} {
		if *f == "" {
			*f = "unknown"
		}
	}
	return info
}

func mergeBuildInfo(info *Info, bi *debug.BuildInfo) {
	if (info.Version == "" || info.Version == devVersion) && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	if bi.GoVersion != "" {
		info.GoVersion = bi.GoVersion
	}

	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = strings.TrimSpace(s.Value)
	}
	if info.Commit == "" {
		if rev := settings["vcs.revision"]; rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			if settings["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			info.Commit = rev
		}
	}
	if info.BuildDate == "" {
		info.BuildDate = settings["vcs.time"]
	}
}
