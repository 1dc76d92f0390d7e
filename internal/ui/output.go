package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// OK prints a success line.
func OK(w io.Writer, msg string) { fmt.Fprintln(w, okStyle.Render("✔ "+msg)) }

// Fail prints an error line.
func Fail(w io.Writer, msg string) { fmt.Fprintln(w, failStyle.Render("✖ "+msg)) }
