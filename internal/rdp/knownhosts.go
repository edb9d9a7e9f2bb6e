package rdp

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultKnownHostsPath returns FreeRDP's per-user certificate cache.
func DefaultKnownHostsPath(home string) string {
	return filepath.Join(home, ".config", "freerdp", "known_hosts")
}

// KnownHost reports whether host appears anywhere in the known-hosts file.
// A missing or unreadable file counts as "not known".
func KnownHost(path, host string) bool {
	if path == "" || host == "" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), host)
}
