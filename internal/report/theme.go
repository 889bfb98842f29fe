package report

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme holds the styles used for report lines.
type Theme struct {
	Name   string
	Banner lipgloss.Style
	Pass   lipgloss.Style
	Fail   lipgloss.Style
	Skip   lipgloss.Style
	Warn   lipgloss.Style
	Muted  lipgloss.Style
	Bold   lipgloss.Style
}

// DefaultTheme returns the colored theme. Styles are bound to r so the
// color profile follows the writer, not the process stdout.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Name:   "default",
		Banner: r.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Pass:   r.NewStyle().Foreground(lipgloss.Color("34")),
		Fail:   r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Skip:   r.NewStyle().Foreground(lipgloss.Color("242")),
		Warn:   r.NewStyle().Foreground(lipgloss.Color("214")),
		Muted:  r.NewStyle().Foreground(lipgloss.Color("242")),
		Bold:   r.NewStyle().Bold(true),
	}
}

// MonoTheme returns a theme without any styling.
func MonoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:   "mono",
		Banner: plain,
		Pass:   plain,
		Fail:   plain,
		Skip:   plain,
		Warn:   plain,
		Muted:  plain,
		Bold:   plain,
	}
}

// ThemeFor picks the default theme for terminals and the mono theme for
// pipes, files and when NO_COLOR is set.
func ThemeFor(w io.Writer) Theme {
	if os.Getenv("NO_COLOR") != "" || !isTerminal(w) {
		return MonoTheme()
	}
	return DefaultTheme(lipgloss.NewRenderer(w))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
