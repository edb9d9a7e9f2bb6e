package rdp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/robled/rocket-depot/internal/display"
)

func TestResolveGeometry(t *testing.T) {
	mon := display.Monitor{Width: 1920, Height: 1080}
	tests := []struct {
		geometry string
		want     string
	}{
		{geometry: "50%", want: "960x540"},
		{geometry: "100%", want: "1920x1080"},
		{geometry: " 80 % ", want: "1536x864"},
		{geometry: "33%", want: "634x356"},
		{geometry: "1024x768", want: "1024x768"},
		{geometry: "  800x600 ", want: "800x600"},
	}
	for _, tt := range tests {
		t.Run(tt.geometry, func(t *testing.T) {
			got, err := ResolveGeometry(tt.geometry, mon)
			if err != nil {
				t.Fatalf("ResolveGeometry(%q) error = %v", tt.geometry, err)
			}
			if got != tt.want {
				t.Fatalf("ResolveGeometry(%q) = %q, want %q", tt.geometry, got, tt.want)
			}
		})
	}
}

func TestResolveGeometryRoundsHalfAway(t *testing.T) {
	// 25% of 1366 is 341.5.
	got, err := ResolveGeometry("25%", display.Monitor{Width: 1366, Height: 768})
	if err != nil {
		t.Fatalf("ResolveGeometry() error = %v", err)
	}
	if got != "342x192" {
		t.Fatalf("ResolveGeometry() = %q, want %q", got, "342x192")
	}
}

func TestResolveGeometryErrors(t *testing.T) {
	if _, err := ResolveGeometry("abc%", display.Monitor{Width: 1, Height: 1}); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("error = %v, want ErrInvalidGeometry", err)
	}
	if _, err := ResolveGeometry("50%", display.Monitor{}); !errors.Is(err, display.ErrNoMonitor) {
		t.Fatalf("error = %v, want ErrNoMonitor", err)
	}
}

func TestKnownHost(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "known_hosts")
	content := "rdp.corp.example 3389 aa:bb\n10.0.0.50 3389 cc:dd\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		host string
		want bool
	}{
		{host: "rdp.corp.example", want: true},
		{host: "corp", want: true},
		{host: "10.0.0.5", want: true}, // substring of 10.0.0.50
		{host: "10.0.0.6", want: false},
		{host: "", want: false},
	}
	for _, tt := range tests {
		if got := KnownHost(path, tt.host); got != tt.want {
			t.Fatalf("KnownHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}

	if KnownHost(filepath.Join(dir, "missing"), "rdp.corp.example") {
		t.Fatal("KnownHost() on missing file = true, want false")
	}
	if KnownHost(dir, "rdp.corp.example") {
		t.Fatal("KnownHost() on a directory = true, want false")
	}
}

func TestDefaultKnownHostsPath(t *testing.T) {
	want := filepath.Join("/home/alice", ".config", "freerdp", "known_hosts")
	if got := DefaultKnownHostsPath("/home/alice"); got != want {
		t.Fatalf("DefaultKnownHostsPath() = %q, want %q", got, want)
	}
}

func TestSpecFor(t *testing.T) {
	spec, ok := SpecFor("xfreerdp")
	if !ok || spec.Binary() != "xfreerdp" || spec.Host != "/v:" {
		t.Fatalf("SpecFor(xfreerdp) = %#v, %v", spec, ok)
	}
	spec.Base[0] = "mutated"
	again, _ := SpecFor("xfreerdp")
	if again.Binary() != "xfreerdp" {
		t.Fatal("SpecFor() returned shared Base slice")
	}
	if _, ok := SpecFor("vnc"); ok {
		t.Fatal("SpecFor(vnc) ok = true")
	}
}
