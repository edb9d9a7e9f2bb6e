package rdp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/robled/rocket-depot/internal/display"
)

// ErrInvalidGeometry is returned for a percentage geometry without digits.
var ErrInvalidGeometry = errors.New("invalid geometry")

// IsPercent reports whether geometry is relative to the monitor size.
func IsPercent(geometry string) bool {
	return strings.Contains(geometry, "%")
}

// ResolveGeometry returns the value passed to the client's geometry flag. A
// percentage is applied to both monitor dimensions; anything else is passed
// through trimmed.
func ResolveGeometry(geometry string, mon display.Monitor) (string, error) {
	if !IsPercent(geometry) {
		return strings.TrimSpace(geometry), nil
	}

	var digits strings.Builder
	for _, r := range geometry {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return "", fmt.Errorf("%w: %q has no percentage value", ErrInvalidGeometry, geometry)
	}
	pct, err := strconv.Atoi(digits.String())
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidGeometry, geometry, err)
	}
	if !mon.Valid() {
		return "", fmt.Errorf("%w: %q needs the monitor size", display.ErrNoMonitor, geometry)
	}

	scale := float64(pct) / 100
	width := int(math.Round(scale * float64(mon.Width)))
	height := int(math.Round(scale * float64(mon.Height)))
	return fmt.Sprintf("%dx%d", width, height), nil
}
