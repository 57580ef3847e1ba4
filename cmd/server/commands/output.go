package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

func muted(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}
