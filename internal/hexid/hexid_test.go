package hexid

import "testing"

func TestNewIsValid(t *testing.T) {
	seen := make(map[string]bool, 500)
	for i := 0; i < 500; i++ {
		id := New()
		if !Valid(id) {
			t.Fatalf("New() = %q, not a valid id", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = true
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"0a1b2c3d", true},
		{"deadbeef", true},
		{"DEADBEEF", false},
		{"0a1b2c3", false},
		{"0a1b2c3d4", false},
		{"0a1b2c3g", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.id); got != tt.want {
			t.Fatalf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
