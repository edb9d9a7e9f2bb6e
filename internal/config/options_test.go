package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseClient(t *testing.T) {
	tests := []struct {
		input   string
		want    Client
		wantErr bool
	}{
		{input: "xfreerdp", want: ClientXFreeRDP},
		{input: " RDesktop ", want: ClientRdesktop},
		{input: "remmina", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClient(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownClient) {
					t.Fatalf("ParseClient(%q) error = %v, want ErrUnknownClient", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClient(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ParseClient(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValuesWritesAllKeys(t *testing.T) {
	values := Options{Fullscreen: true}.Values()
	if len(values) != len(Keys) {
		t.Fatalf("Values() has %d keys, want %d", len(values), len(Keys))
	}
	for _, k := range Keys {
		if _, ok := values[k]; !ok {
			t.Fatalf("Values() missing key %q", k)
		}
	}
	if values[KeyFullscreen] != "true" || values[KeyHomeShare] != "false" {
		t.Fatalf("booleans = %q/%q, want true/false", values[KeyFullscreen], values[KeyHomeShare])
	}
}

func TestOptionsFromValuesMissingKeys(t *testing.T) {
	got := OptionsFromValues(map[string]string{KeyHost: "h", KeyTerminal: "true", KeyHomeShare: "nonsense"})
	want := Options{Host: "h", Terminal: true}
	if got != want {
		t.Fatalf("OptionsFromValues() = %#v, want %#v", got, want)
	}
}

func TestDefaultOptions(t *testing.T) {
	got := DefaultOptions(Environment{HomeDir: "/home/alice", Username: "alice"})
	if got.User != "alice" || got.Program != ClientXFreeRDP || got.Geometry != "1024x768" {
		t.Fatalf("DefaultOptions() = %#v", got)
	}
	if got := DefaultOptions(Environment{}); got.User != "user" {
		t.Fatalf("DefaultOptions(empty).User = %q, want %q", got.User, "user")
	}
}

func TestConfigPath(t *testing.T) {
	env := Environment{HomeDir: "/home/alice"}
	want := filepath.Join("/home/alice", ".config", "rocket-depot", "config.ini")
	if got := ConfigPath(env); got != want {
		t.Fatalf("ConfigPath() = %q, want %q", got, want)
	}
}

func TestEnsureDir(t *testing.T) {
	env := Environment{HomeDir: t.TempDir()}
	if err := EnsureDir(env); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if err := EnsureDir(env); err != nil {
		t.Fatalf("second EnsureDir() error = %v", err)
	}
}
