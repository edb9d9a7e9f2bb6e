package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func testDefaults() Options {
	return DefaultOptions(Environment{HomeDir: "/home/alice", Username: "alice"})
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	s, err := Open(path, testDefaults())
	if err != nil {
		t.Fatalf("Open(%s) error = %v", path, err)
	}
	return s
}

func TestOpenSeedsDefaultsSection(t *testing.T) {
	s := openTestStore(t)

	raw, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	text := string(raw)
	if !strings.Contains(text, "[defaults]") {
		t.Fatalf("config file missing [defaults] header:\n%s", text)
	}
	for _, k := range Keys {
		if !strings.Contains(text, k) {
			t.Fatalf("config file missing key %q:\n%s", k, text)
		}
	}

	got, err := s.Load(DefaultsSection)
	if err != nil {
		t.Fatalf("Load(defaults) error = %v", err)
	}
	if !reflect.DeepEqual(got, testDefaults()) {
		t.Fatalf("Load(defaults) = %#v, want %#v", got, testDefaults())
	}
}

func TestOpenKeepsExistingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	content := "[defaults]\nhost = rdp.corp.example\nprogram = rdesktop\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := Open(path, testDefaults())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, err := s.Load(DefaultsSection)
	if err != nil {
		t.Fatalf("Load(defaults) error = %v", err)
	}
	if got.Host != "rdp.corp.example" || got.Program != ClientRdesktop {
		t.Fatalf("Load(defaults) = %#v, want values from file", got)
	}
	if got.User != "" || got.Geometry != "" || got.Fullscreen {
		t.Fatalf("missing keys should read as empty, got %#v", got)
	}
}

func TestOpenWriteFailureIsBestEffort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "config.ini")

	s, err := Open(path, testDefaults())
	if !errors.Is(err, ErrConfigWriteFailed) {
		t.Fatalf("Open() error = %v, want ErrConfigWriteFailed", err)
	}
	if s == nil {
		t.Fatal("Open() returned nil store, want usable in-memory store")
	}
	names, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !reflect.DeepEqual(names, []string{DefaultsSection}) {
		t.Fatalf("List() = %v, want [defaults]", names)
	}

	if err := s.Save("work", testDefaults()); !errors.Is(err, ErrConfigWriteFailed) {
		t.Fatalf("Save() error = %v, want ErrConfigWriteFailed", err)
	}
	if s.Exists("work") {
		t.Fatal("failed Save() left the section in memory")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "domain user and all flags",
			opts: Options{
				Host:         "10.0.0.5",
				User:         `CORP\alice`,
				Geometry:     "80%",
				Program:      ClientXFreeRDP,
				HomeShare:    true,
				GrabKeyboard: true,
				Fullscreen:   true,
				CLIOptions:   "/cert-ignore -sec-nla",
				Terminal:     true,
			},
		},
		{
			name: "comment characters in options",
			opts: Options{
				Host:       "rdp.example.com",
				User:       "bob smith",
				Geometry:   "1280x1024",
				Program:    ClientRdesktop,
				CLIOptions: `-T "win #1; prod"`,
			},
		},
		{
			name: "trailing backslash",
			opts: Options{Host: "h", User: `CORP\`, Program: ClientXFreeRDP},
		},
		{
			name: "empty program",
			opts: Options{Host: "h"},
		},
		{
			name: "double quoted value",
			opts: Options{Host: "h", User: `"/p:my pass"`, CLIOptions: `"/p:my pass"`},
		},
		{
			name: "single quoted value",
			opts: Options{Host: "h", User: "'/t:a b'", CLIOptions: "'/t:a b'"},
		},
		{
			name: "backticks",
			opts: Options{Host: "h", CLIOptions: "/title:`prod` /cert-ignore"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Save("profile", tt.opts); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := s.Load("profile")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.opts) {
				t.Fatalf("Load() = %#v, want %#v", got, tt.opts)
			}

			// A fresh store reading the same file must agree.
			reopened, err := Open(s.Path(), testDefaults())
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			got, err = reopened.Load("profile")
			if err != nil {
				t.Fatalf("reopened Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.opts) {
				t.Fatalf("reopened Load() = %#v, want %#v", got, tt.opts)
			}
		})
	}
}

func TestSaveTrimsSurroundingWhitespace(t *testing.T) {
	s := openTestStore(t)

	in := Options{Host: " 10.0.0.5", User: "  'CORP\\alice' ", Geometry: "80% ", CLIOptions: ` "/p:my pass" `}
	want := Options{Host: "10.0.0.5", User: `'CORP\alice'`, Geometry: "80%", CLIOptions: `"/p:my pass"`}
	if err := s.Save("spaced", in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := Open(s.Path(), testDefaults())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, err := reopened.Load("spaced")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("Load() = %#v, want %#v", got, want)
	}
}

func TestLoadKeepsQuotesFromHandEditedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	raw := "[defaults]\nhost = h\n\n[work]\nhost = h\nclioptions = \"/p:my pass\" /cert-ignore\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	s, err := Open(path, testDefaults())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, err := s.Load("work")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := `"/p:my pass" /cert-ignore`; got.CLIOptions != want {
		t.Fatalf("CLIOptions = %q, want %q", got.CLIOptions, want)
	}
}

func TestLoadMissingSection(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load("nope")
	if !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("Load() error = %v, want ErrSectionNotFound", err)
	}
	var secErr *SectionError
	if !errors.As(err, &secErr) || secErr.Section != "nope" {
		t.Fatalf("Load() error = %#v, want SectionError for %q", err, "nope")
	}
}

func TestSaveRejectsInvalidInput(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		name    string
		section string
		opts    Options
		wantErr error
	}{
		{name: "empty name", section: "", wantErr: ErrInvalidProfileName},
		{name: "ini default section", section: "DEFAULT", wantErr: ErrInvalidProfileName},
		{name: "brackets", section: "a]b", wantErr: ErrInvalidProfileName},
		{name: "padded", section: " work ", wantErr: ErrInvalidProfileName},
		{name: "unknown program", section: "work", opts: Options{Program: "remmina"}, wantErr: ErrUnknownClient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Save(tt.section, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Save(%q) error = %v, want %v", tt.section, err, tt.wantErr)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save("work", Options{Host: "w"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := s.Delete("work"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.Exists("work") {
		t.Fatal("work still exists after Delete()")
	}
	if err := s.Delete("work"); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("second Delete() error = %v, want ErrSectionNotFound", err)
	}

	raw, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(raw), "[work]") {
		t.Fatalf("deleted section still on disk:\n%s", raw)
	}
}

func TestDeleteDefaultsIsRejected(t *testing.T) {
	s := openTestStore(t)

	err := s.Delete(DefaultsSection)
	if !errors.Is(err, ErrProtectedSection) {
		t.Fatalf("Delete(defaults) error = %v, want ErrProtectedSection", err)
	}
	if !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("Delete(defaults) error = %v, want ErrSectionNotFound class", err)
	}
	if !s.Exists(DefaultsSection) {
		t.Fatal("defaults section removed")
	}
}

func TestListOrdersDefaultsFirst(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"zeta", "Alpha", "beta", "a-defaults", "delta"} {
		if err := s.Save(name, Options{Host: name}); err != nil {
			t.Fatalf("Save(%q) error = %v", name, err)
		}
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"defaults", "Alpha", "a-defaults", "beta", "delta", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
}

func TestListMissingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	s, err := Open(path, testDefaults())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("[work]\nhost = w\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if _, err := s.List(); !errors.Is(err, ErrMissingDefaults) {
		t.Fatalf("List() error = %v, want ErrMissingDefaults", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 3; i++ {
		if err := s.Save("work", Options{Host: "w"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("config dir entries = %v, want only config.ini", names)
	}
}

func TestConcurrentSaves(t *testing.T) {
	s := openTestStore(t)

	var wg sync.WaitGroup
	names := []string{"a", "b", "c", "d", "e", "f"}
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if err := s.Save(name, Options{Host: name + ".example.com"}); err != nil {
				t.Errorf("Save(%q) error = %v", name, err)
			}
		}(name)
	}
	wg.Wait()

	reopened, err := Open(s.Path(), testDefaults())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	for _, name := range names {
		got, err := reopened.Load(name)
		if err != nil {
			t.Fatalf("Load(%q) error = %v", name, err)
		}
		if got.Host != name+".example.com" {
			t.Fatalf("Load(%q).Host = %q", name, got.Host)
		}
	}
}
