package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"docview/internal/query"
	"docview/internal/render"
)

var (
	// headerStyle for operation banners
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("81"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// errorStyle for error indicators
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// printBlock writes one operation's output under a styled banner.
func printBlock(w io.Writer, title, body string) {
	fmt.Fprintln(w, headerStyle.Render("== "+title+" =="))
	fmt.Fprint(w, body)
}

// printError renders a structured query error for humans.
func printError(w io.Writer, qerr *query.Error) {
	fmt.Fprint(w, errorStyle.Render("error"), " ", render.ErrorText(qerr))
}

// printNote writes muted side information (verbose mode).
func printNote(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf(format, args...)))
}
