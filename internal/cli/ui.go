package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette shared by command output and the explorer.
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorBright = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	StyleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleLink     = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	StyleDim      = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue    = lipgloss.NewStyle().Foreground(colorBright)
	StyleSuccess  = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning  = lipgloss.NewStyle().Foreground(colorWarn)

	styleError   = lipgloss.NewStyle().Foreground(colorFail)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleCommand = lipgloss.NewStyle().Foreground(colorLink)
	styleKey     = styleMuted.Width(12)
)

const (
	iconError    = "✗"
	iconCached   = "cached"
	iconFresh    = "fresh"
	iconDegraded = "no solver"
)

// stdout receives all user-facing command output. Logs go to stderr.
var stdout io.Writer = os.Stdout

func emit(s string) { fmt.Fprintln(stdout, s) }

func status(icon string, style lipgloss.Style, format string, args []any) {
	emit(style.Render(icon) + " " + fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status("✓", StyleSuccess, format, args) }
func printError(format string, args ...any)   { status(iconError, styleError, format, args) }
func printInfo(format string, args ...any)    { status("›", styleMuted, format, args) }

func printWarning(format string, args ...any) {
	emit(StyleWarning.Render("! " + fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	emit("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	emit("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	emit(styleKey.Render(key) + " " + StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	emit(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { emit("") }

// layoutSummary is the one-line summary printed after a layout.
type layoutSummary struct {
	Nodes    int
	Edges    int
	Overlaps int
	Cached   bool
	Degraded bool
}

func printStats(s layoutSummary) { emit(statsLine(s)) }

// statsLine renders s as "  N nodes · N edges [· N overlaps] · status".
func statsLine(s layoutSummary) string {
	parts := []string{
		fmt.Sprintf("%d nodes", s.Nodes),
		fmt.Sprintf("%d edges", s.Edges),
	}
	if s.Overlaps > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d overlaps", s.Overlaps)))
	}

	switch {
	case s.Degraded:
		parts = append(parts, StyleWarning.Render(iconDegraded))
	case s.Cached:
		parts = append(parts, StyleSuccess.Render(iconCached))
	default:
		parts = append(parts, styleMuted.Render(iconFresh))
	}

	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}
