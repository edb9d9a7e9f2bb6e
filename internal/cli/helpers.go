package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"

	"github.com/robled/rocket-depot/internal/theme"
)

// ANSI styles, empty when colour is off. See setColor.
var (
	colorReset  string
	colorBold   string
	colorDim    string
	colorRed    string
	colorYellow string

	styleBoldCyan  string
	styleBoldWhite string
)

var colorEnabled bool

func init() { setColor(true) }

func setColor(enabled bool) {
	colorEnabled = enabled
	code := func(c string) string {
		if enabled {
			return c
		}
		return ""
	}
	colorReset = code("\033[0m")
	colorBold = code("\033[1m")
	colorDim = code("\033[2m")
	colorRed = code("\033[31m")
	colorYellow = code("\033[33m")
	styleBoldCyan = code("\033[1;36m")
	styleBoldWhite = code("\033[1;37m")
}

// wantColor reports whether stdout is a terminal that should get colour.
func wantColor(noColorFlag bool) bool {
	if noColorFlag || os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// badge renders a status word, styled when colour is on.
func badge(status string) string {
	if !colorEnabled {
		return "[" + status + "]"
	}
	return theme.Badge(status)
}

func accent(s string) string {
	if !colorEnabled {
		return s
	}
	return theme.Accent(s)
}

// muted renders secondary text such as paths and ids.
func muted(s string) string {
	if !colorEnabled {
		return s
	}
	return theme.Muted(s)
}

func printHeader(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s%s%s\n", styleBoldCyan, title, colorReset)
	fmt.Fprintln(w, colorDim+strings.Repeat("-", ansi.StringWidth(title)+2)+colorReset)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s%-16s%s %s\n", colorBold, label+":", colorReset, value)
}

// printTable aligns rows under headers. Cell widths ignore escape codes and
// count wide runes as two columns.
func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, colorDim+"  (none)"+colorReset)
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = ansi.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], ansi.StringWidth(cell))
			}
		}
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, h := range headers {
		b.WriteString(colorBold + pad(h, widths[i]+2) + colorReset)
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " "))

	b.Reset()
	b.WriteString("  ")
	for _, width := range widths {
		b.WriteString(colorDim + strings.Repeat("-", width+2) + colorReset)
	}
	fmt.Fprintln(w, b.String())

	for _, row := range rows {
		b.Reset()
		b.WriteString("  ")
		for i, cell := range row {
			if i < len(widths) {
				b.WriteString(pad(cell, widths[i]+2))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

func pad(s string, width int) string {
	if n := width - ansi.StringWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// truncate shortens s to maxWidth display columns, ending in "...".
func truncate(s string, maxWidth int) string {
	return ansi.Truncate(s, maxWidth, "...")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
