// Package failedlaunch keeps a journal of connection attempts that did not
// work, one JSON file per attempt.
package failedlaunch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robled/rocket-depot/internal/config"
	"github.com/robled/rocket-depot/internal/debug"
	"github.com/robled/rocket-depot/internal/hexid"
	"github.com/robled/rocket-depot/internal/launch"
	"github.com/robled/rocket-depot/internal/rdp"
)

const (
	dirName       = "failed-launches"
	schemaVersion = 1
	timeLayout    = "20060102T150405.000000000Z"
)

// Kind identifies why an attempt failed.
type Kind string

const (
	KindLaunchFailed Kind = "launch_failed"
	KindClientExited Kind = "client_exited"
)

// Record is one failed attempt as stored on disk.
type Record struct {
	Version    int       `json:"version"`
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`

	Kind  Kind   `json:"kind"`
	Error string `json:"error"`

	LaunchID    string   `json:"launch_id,omitempty"`
	Profile     string   `json:"profile,omitempty"`
	Host        string   `json:"host,omitempty"`
	Client      string   `json:"client"`
	Argv        []string `json:"argv"`
	Command     string   `json:"command"`
	Wrapped     bool     `json:"wrapped,omitempty"`
	WrapReasons []string `json:"wrap_reasons,omitempty"`

	ExitCode   *int   `json:"exit_code,omitempty"`
	ErrorText  string `json:"error_text,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// Attempt is what the caller knows about a failed connection.
type Attempt struct {
	Profile string
	Host    string
	Spec    rdp.LaunchSpec
	// Result is nil when the process never started.
	Result *launch.Result
}

// Journal writes and lists failure records in one directory.
type Journal struct {
	dir string
}

// Dir returns the default journal directory for env.
func Dir(env config.Environment) string {
	return filepath.Join(config.Dir(env), dirName)
}

// New returns a journal rooted at dir.
func New(dir string) *Journal {
	return &Journal{dir: strings.TrimSpace(dir)}
}

// Dir returns the journal directory.
func (j *Journal) Dir() string {
	if j == nil {
		return ""
	}
	return j.dir
}

// Classify maps a launch error to a record kind.
func Classify(err error) (Kind, bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, launch.ErrLaunchFailed):
		return KindLaunchFailed, true
	case errors.Is(err, launch.ErrClientExited):
		return KindClientExited, true
	default:
		return "", false
	}
}

// Record writes a record for err. It returns (nil, "", nil) when err is not a
// launch failure.
func (j *Journal) Record(err error, a Attempt) (*Record, string, error) {
	kind, ok := Classify(err)
	if !ok {
		return nil, "", nil
	}
	rec := buildRecord(kind, err, a)
	path, werr := j.write(rec)
	if werr != nil {
		return nil, "", werr
	}
	debug.LogKV("journal", "failure recorded", "kind", kind, "path", path)
	return rec, path, nil
}

func buildRecord(kind Kind, err error, a Attempt) *Record {
	now := time.Now().UTC()
	rec := &Record{
		Version:    schemaVersion,
		ID:         fmt.Sprintf("%s-%s", now.Format(timeLayout), hexid.New()),
		RecordedAt: now,
		Kind:       kind,
		Error:      strings.TrimSpace(err.Error()),
		Profile:    a.Profile,
		Host:       a.Host,
		Client:     string(a.Spec.Client),
		Argv:       append([]string(nil), a.Spec.Argv...),
		Command:    rdp.FormatCommand(a.Spec.Argv),
		Wrapped:    a.Spec.Wrapped,
	}
	for _, r := range a.Spec.WrapReasons {
		rec.WrapReasons = append(rec.WrapReasons, string(r))
	}
	if res := a.Result; res != nil {
		rec.LaunchID = res.ID
		if res.Exited {
			code := res.ExitCode
			rec.ExitCode = &code
		}
		rec.ErrorText = res.ErrorText
		rec.DurationMS = res.Duration.Milliseconds()
	}
	return rec
}

func (j *Journal) write(rec *Record) (string, error) {
	if j.Dir() == "" {
		return "", fmt.Errorf("failed launch journal dir is empty")
	}
	if err := os.MkdirAll(j.dir, 0o700); err != nil {
		return "", fmt.Errorf("creating failed launch dir: %w", err)
	}

	path := filepath.Join(j.dir, rec.ID+".json")
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding failed launch record: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", fmt.Errorf("writing failed launch temp record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("replacing failed launch record: %w", err)
	}
	return path, nil
}

// List returns up to limit records, newest first. limit <= 0 means all.
// Only files named like the ones Record writes are read, and those that
// cannot be decoded are skipped. A missing directory is an empty journal.
func (j *Journal) List(limit int) ([]Record, error) {
	entries, err := os.ReadDir(j.Dir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading failed launch dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !isRecordName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	// Names start with a fixed-width UTC timestamp.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var out []Record
	for _, name := range names {
		if limit > 0 && len(out) >= limit {
			break
		}
		data, err := os.ReadFile(filepath.Join(j.dir, name))
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			debug.LogKV("journal", "skipping unreadable record", "file", name, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// isRecordName matches "<timestamp>-<hexid>.json".
func isRecordName(name string) bool {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return false
	}
	ts, id, ok := strings.Cut(base, "-")
	if !ok || len(ts) != len(timeLayout) {
		return false
	}
	return hexid.Valid(id)
}
