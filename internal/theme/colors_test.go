package theme

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestBadgeText(t *testing.T) {
	for _, status := range []string{"ok", "failed", "launching", "other"} {
		if got := ansi.Strip(Badge(status)); got != "["+status+"]" {
			t.Fatalf("Badge(%q) text = %q", status, got)
		}
	}
	if got := ansi.Strip(Accent("work")); got != "work" {
		t.Fatalf("Accent() text = %q", got)
	}
	if got := ansi.Strip(Muted("note")); got != "note" {
		t.Fatalf("Muted() text = %q", got)
	}
}
