package config

import (
	"errors"
	"fmt"
)

var (
	// ErrSectionNotFound means the requested profile does not exist.
	ErrSectionNotFound = errors.New("profile not found")
	// ErrProtectedSection is returned when deleting the defaults profile. It
	// matches ErrSectionNotFound with errors.Is.
	ErrProtectedSection = fmt.Errorf("%w: the %s profile cannot be deleted", ErrSectionNotFound, DefaultsSection)
	// ErrConfigWriteFailed wraps any failure persisting the config file.
	ErrConfigWriteFailed = errors.New("writing config file")
	// ErrMissingDefaults means the config has no defaults section.
	ErrMissingDefaults = errors.New("config has no defaults section")
	// ErrInvalidProfileName rejects names the INI format cannot hold.
	ErrInvalidProfileName = errors.New("invalid profile name")
)

// SectionError reports a failed operation on one profile section.
type SectionError struct {
	Op      string
	Section string
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s profile %q: %v", e.Op, e.Section, e.Err)
}

func (e *SectionError) Unwrap() error { return e.Err }

func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
