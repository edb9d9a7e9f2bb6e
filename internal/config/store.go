package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/ini.v1"
)

// DefaultsSection is the profile that always exists and always lists first.
const DefaultsSection = "defaults"

// loadOptions keeps the parser close to the plain "key = value" files the
// launcher has always written: no inline comments, no line continuations and
// quotes around a value are part of it, so usernames like DOMAIN\, options
// containing '#' and quoted arguments such as "/p:my pass" survive a round
// trip. Values never carry surrounding whitespace (see Options.Values), so
// the writer never adds quotes of its own that would now be kept.
var loadOptions = ini.LoadOptions{
	Loose:                   true,
	IgnoreContinuation:      true,
	IgnoreInlineComment:     true,
	PreserveSurroundedQuote: true,
}

// Store owns the on-disk profile file. Every mutation is written through
// immediately. Methods are safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	file *ini.File
}

// Open reads the profile file at path, creating the defaults section from
// defaults when it is missing. If that first write fails the returned store
// is still usable in memory and the error wraps ErrConfigWriteFailed.
func Open(path string, defaults Options) (*Store, error) {
	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	s := &Store{path: path, file: f}

	if _, err := f.GetSection(DefaultsSection); err == nil {
		return s, nil
	}
	sec, err := f.NewSection(DefaultsSection)
	if err != nil {
		return nil, err
	}
	values := defaults.Values()
	for _, k := range Keys {
		sec.Key(k).SetValue(values[k])
	}
	// The seeded section stays in memory even when it cannot be written.
	if err := s.persist(); err != nil {
		return s, &SectionError{Op: "seed", Section: DefaultsSection, Err: err}
	}
	return s, nil
}

// Path returns the config file location.
func (s *Store) Path() string { return s.path }

// Reload discards in-memory state and re-reads the file, picking up edits
// made by hand since Open.
func (s *Store) Reload() error {
	f, err := ini.LoadSources(loadOptions, s.path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.file = f
	s.mu.Unlock()
	return nil
}

// Exists reports whether a profile named section is present.
func (s *Store) Exists(section string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.file.GetSection(section)
	return err == nil
}

// Load returns the options stored under section. Keys missing from the
// section read as empty strings.
func (s *Store) Load(section string) (Options, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec, err := s.file.GetSection(section)
	if err != nil {
		return Options{}, &SectionError{Op: "load", Section: section, Err: ErrSectionNotFound}
	}
	values := make(map[string]string, len(Keys))
	for _, k := range Keys {
		if sec.HasKey(k) {
			values[k] = sec.Key(k).Value()
		}
	}
	return OptionsFromValues(values), nil
}

// Save writes all nine keys of opts under section, creating it if needed.
func (s *Store) Save(section string, opts Options) error {
	if err := ValidateProfileName(section); err != nil {
		return &SectionError{Op: "save", Section: section, Err: err}
	}
	if opts.Program != "" && !opts.Program.Valid() {
		return &SectionError{Op: "save", Section: section, Err: errorf(ErrUnknownClient, "%q", opts.Program)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.snapshot(section)
	sec, err := s.file.NewSection(section)
	if err != nil {
		return &SectionError{Op: "save", Section: section, Err: err}
	}
	values := opts.Values()
	for _, k := range Keys {
		sec.Key(k).SetValue(values[k])
	}

	if err := s.persist(); err != nil {
		s.restore(section, prev, existed)
		return &SectionError{Op: "save", Section: section, Err: err}
	}
	return nil
}

// Delete removes section from the file. The defaults profile is protected.
func (s *Store) Delete(section string) error {
	if section == DefaultsSection {
		return &SectionError{Op: "delete", Section: section, Err: ErrProtectedSection}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.snapshot(section)
	if !existed {
		return &SectionError{Op: "delete", Section: section, Err: ErrSectionNotFound}
	}
	s.file.DeleteSection(section)

	if err := s.persist(); err != nil {
		s.restore(section, prev, existed)
		return &SectionError{Op: "delete", Section: section, Err: err}
	}
	return nil
}

// List returns every profile name sorted alphabetically, with the defaults
// profile first.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	names := s.file.SectionStrings()
	s.mu.Unlock()

	out := make([]string, 0, len(names))
	hasDefaults := false
	for _, name := range names {
		switch name {
		case ini.DefaultSection:
			continue
		case DefaultsSection:
			hasDefaults = true
			continue
		}
		out = append(out, name)
	}
	if !hasDefaults {
		return nil, ErrMissingDefaults
	}
	sort.Strings(out)
	return append([]string{DefaultsSection}, out...), nil
}

// ValidateProfileName rejects names that cannot round-trip as an INI section
// header.
func ValidateProfileName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errorf(ErrInvalidProfileName, "name is empty")
	case name != strings.TrimSpace(name):
		return errorf(ErrInvalidProfileName, "%q has surrounding whitespace", name)
	case name == ini.DefaultSection:
		return errorf(ErrInvalidProfileName, "%q is reserved", name)
	case strings.ContainsAny(name, "[]\r\n"):
		return errorf(ErrInvalidProfileName, "%q contains brackets or line breaks", name)
	}
	return nil
}

func (s *Store) snapshot(section string) (map[string]string, bool) {
	sec, err := s.file.GetSection(section)
	if err != nil {
		return nil, false
	}
	return sec.KeysHash(), true
}

func (s *Store) restore(section string, prev map[string]string, existed bool) {
	s.file.DeleteSection(section)
	if !existed {
		return
	}
	sec, err := s.file.NewSection(section)
	if err != nil {
		return
	}
	for _, k := range Keys {
		if v, ok := prev[k]; ok {
			sec.Key(k).SetValue(v)
		}
	}
	for k, v := range prev {
		if !sec.HasKey(k) {
			sec.Key(k).SetValue(v)
		}
	}
}

// persist writes the whole file to a temp file in the same directory and
// renames it over the original, so a crash leaves either the old or the new
// file on disk.
func (s *Store) persist() error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWriteFailed, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := s.file.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %w", ErrConfigWriteFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %w", ErrConfigWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %w", ErrConfigWriteFailed, err)
	}
	if err := os.Chmod(tmpName, filePerm(s.path)); err != nil {
		cleanup()
		return fmt.Errorf("%w: %w", ErrConfigWriteFailed, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("%w: %w", ErrConfigWriteFailed, err)
	}
	return nil
}

// filePerm keeps the mode of an existing config file, or 0644 for a new one.
func filePerm(path string) fs.FileMode {
	fi, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return 0o600
		}
		return 0o644
	}
	return fi.Mode().Perm()
}
