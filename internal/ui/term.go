package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/javiermolinar/agenda/internal/task"
)

// Color definitions for consistent styling across the UI.
var (
	colorOrange      = color.New(color.FgYellow)
	colorGreen       = color.New(color.FgGreen)
	colorYellowGreen = color.New(color.FgHiGreen)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Priority and conflicts stand out
	colorAlert = color.New(color.FgRed, color.Bold)

	// Free slots and successful checks
	colorOK = color.New(color.FgGreen, color.Bold)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// colorProfile picks the richest color profile w supports.
func colorProfile(w io.Writer) termenv.Profile {
	if !isTerminal(w) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

// formatTaskColor paints s in the task's color tag.
func formatTaskColor(c task.ColorTag, s string) string {
	switch c {
	case task.ColorGreen:
		return colorGreen.Sprint(s)
	case task.ColorYellowGreen:
		return colorYellowGreen.Sprint(s)
	default:
		return colorOrange.Sprint(s)
	}
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatAlert(s string) string {
	return colorAlert.Sprint(s)
}

func formatOK(s string) string {
	return colorOK.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
