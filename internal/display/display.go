// Package display finds the size of the monitor a remote desktop window will
// open on, so percentage geometries can be turned into pixels.
package display

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const probeTimeout = 2 * time.Second

// ErrNoMonitor means no monitor size could be determined.
var ErrNoMonitor = errors.New("no monitor geometry available")

// Monitor is a monitor's size in pixels.
type Monitor struct {
	Width  int
	Height int
}

func (m Monitor) String() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// Valid reports whether both dimensions are positive.
func (m Monitor) Valid() bool {
	return m.Width > 0 && m.Height > 0
}

var sizeRE = regexp.MustCompile(`^\s*(\d+)\s*[xX]\s*(\d+)\s*$`)

// ParseMonitor parses "WIDTHxHEIGHT".
func ParseMonitor(s string) (Monitor, error) {
	m := sizeRE.FindStringSubmatch(s)
	if m == nil {
		return Monitor{}, fmt.Errorf("invalid monitor size %q (want WIDTHxHEIGHT)", s)
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	mon := Monitor{Width: w, Height: h}
	if !mon.Valid() {
		return Monitor{}, fmt.Errorf("invalid monitor size %q", s)
	}
	return mon, nil
}

var (
	// "HDMI-1 connected primary 1920x1080+0+0 (normal left ...) 531mm x 299mm"
	outputRE = regexp.MustCompile(`^(\S+)\s+connected\s+(primary\s+)?(\d+)x(\d+)\+\d+\+\d+`)
	// "Screen 0: minimum 320 x 200, current 3840 x 1080, maximum 16384 x 16384"
	screenRE = regexp.MustCompile(`^Screen\s+\d+:.*current\s+(\d+)\s+x\s+(\d+)`)
)

// ParseXrandr picks a monitor from `xrandr --current` output: the primary
// connected output, else the first connected output with an active mode,
// else the size of the whole screen.
func ParseXrandr(output string) (Monitor, error) {
	var first, screen Monitor
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if m := outputRE.FindStringSubmatch(line); m != nil {
			w, _ := strconv.Atoi(m[3])
			h, _ := strconv.Atoi(m[4])
			mon := Monitor{Width: w, Height: h}
			if m[2] != "" && mon.Valid() {
				return mon, nil
			}
			if !first.Valid() {
				first = mon
			}
			continue
		}
		if m := screenRE.FindStringSubmatch(line); m != nil && !screen.Valid() {
			w, _ := strconv.Atoi(m[1])
			h, _ := strconv.Atoi(m[2])
			screen = Monitor{Width: w, Height: h}
		}
	}
	if first.Valid() {
		return first, nil
	}
	if screen.Valid() {
		return screen, nil
	}
	return Monitor{}, ErrNoMonitor
}

// Probe asks xrandr for the current monitor layout.
func Probe(ctx context.Context) (Monitor, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "xrandr", "--current").Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Monitor{}, fmt.Errorf("%w: xrandr timed out", ErrNoMonitor)
		}
		return Monitor{}, fmt.Errorf("%w: running xrandr: %w", ErrNoMonitor, err)
	}
	return ParseXrandr(string(out))
}
