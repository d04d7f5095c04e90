package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// reporter prints user-facing diagnostics with a colored severity prefix.
type reporter struct {
	w          io.Writer
	errPrefix  lipgloss.Style
	warnPrefix lipgloss.Style
}

func newReporter(w io.Writer, color bool) *reporter {
	renderer := lipgloss.NewRenderer(w)
	if !color {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &reporter{
		w:          w,
		errPrefix:  renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warnPrefix: renderer.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

func (r *reporter) errorf(format string, args ...any) {
	fmt.Fprintf(r.w, "%s %s\n", r.errPrefix.Render("error:"), fmt.Sprintf(format, args...))
}

func (r *reporter) warnf(format string, args ...any) {
	fmt.Fprintf(r.w, "%s %s\n", r.warnPrefix.Render("warning:"), fmt.Sprintf(format, args...))
}
