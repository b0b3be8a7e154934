// Package ui renders the CVE table on the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary  = lipgloss.Color("#7D56F4") // Purple - brand color
	Critical = lipgloss.Color("#FF0000") // Bright red
	Muted    = lipgloss.Color("#6B7280") // Gray
	Light    = lipgloss.Color("#FAFAFA")
)

// Styles holds the styles of one renderer. Styles are bound to the renderer
// so color output follows the capabilities of the writer they print to.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	CVE    lipgloss.Style
	Border lipgloss.Style
}

// NewStyles builds the table styles for r
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(Light).
			Background(Primary).
			Padding(0, 1),
		Header: r.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1),
		Cell: r.NewStyle().
			Padding(0, 1),
		CVE: r.NewStyle().
			Foreground(Critical).
			Padding(0, 1),
		Border: r.NewStyle().
			Foreground(Muted),
	}
}
