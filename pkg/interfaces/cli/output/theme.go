package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorRed    = lipgloss.Color("#fb4934")
	colorBlue   = lipgloss.Color("#83a598")
	colorDim    = lipgloss.Color("#928374")
	colorHeader = lipgloss.Color("#fe8019")
)

// Theme holds the styles of one output stream
type Theme struct {
	Green  lipgloss.Style
	Yellow lipgloss.Style
	Red    lipgloss.Style
	Blue   lipgloss.Style
	Dim    lipgloss.Style
	Header lipgloss.Style
	Bold   lipgloss.Style
}

// NewTheme builds styles for w. In auto mode colour is used only when w is a terminal.
func NewTheme(w io.Writer, mode string) *Theme {
	r := lipgloss.NewRenderer(w)
	colored := mode == ColorAlways || (mode != ColorNever && isTerminal(w))
	if !colored {
		plain := r.NewStyle()
		return &Theme{Green: plain, Yellow: plain, Red: plain, Blue: plain, Dim: plain, Header: plain, Bold: plain}
	}
	if mode == ColorAlways {
		r.SetColorProfile(termenv.TrueColor)
	}

	return &Theme{
		Green:  r.NewStyle().Foreground(colorGreen),
		Yellow: r.NewStyle().Foreground(colorYellow),
		Red:    r.NewStyle().Foreground(colorRed),
		Blue:   r.NewStyle().Foreground(colorBlue),
		Dim:    r.NewStyle().Foreground(colorDim),
		Header: r.NewStyle().Foreground(colorHeader).Bold(true),
		Bold:   r.NewStyle().Bold(true),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
