package display

import (
	"errors"
	"testing"
)

const dualHead = `Screen 0: minimum 320 x 200, current 3840 x 1080, maximum 16384 x 16384
eDP-1 connected 1920x1080+0+0 (normal left inverted right x axis y axis) 309mm x 174mm
   1920x1080     60.01*+
HDMI-1 connected primary 2560x1440+1920+0 (normal left inverted right x axis y axis) 597mm x 336mm
   2560x1440     59.95*+
DP-1 disconnected (normal left inverted right x axis y axis)
`

func TestParseXrandr(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    Monitor
		wantErr bool
	}{
		{name: "primary wins", output: dualHead, want: Monitor{Width: 2560, Height: 1440}},
		{
			name: "first connected without primary",
			output: "Screen 0: minimum 8 x 8, current 1920 x 1080, maximum 32767 x 32767\n" +
				"Virtual-1 connected 1920x1080+0+0 0mm x 0mm\n",
			want: Monitor{Width: 1920, Height: 1080},
		},
		{
			name:   "screen fallback",
			output: "Screen 0: minimum 8 x 8, current 1280 x 800, maximum 32767 x 32767\nVirtual-1 connected (normal)\n",
			want:   Monitor{Width: 1280, Height: 800},
		},
		{name: "nothing usable", output: "Can't open display\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseXrandr(tt.output)
			if tt.wantErr {
				if !errors.Is(err, ErrNoMonitor) {
					t.Fatalf("ParseXrandr() error = %v, want ErrNoMonitor", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseXrandr() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseXrandr() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMonitor(t *testing.T) {
	got, err := ParseMonitor(" 1920x1080 ")
	if err != nil {
		t.Fatalf("ParseMonitor() error = %v", err)
	}
	if got != (Monitor{Width: 1920, Height: 1080}) {
		t.Fatalf("ParseMonitor() = %v", got)
	}
	if got.String() != "1920x1080" {
		t.Fatalf("String() = %q", got.String())
	}

	for _, bad := range []string{"", "1920", "0x1080", "axb", "80%"} {
		if _, err := ParseMonitor(bad); err == nil {
			t.Fatalf("ParseMonitor(%q) expected error", bad)
		}
	}
}
