package render

import "github.com/charmbracelet/lipgloss"

// styles are bound to a renderer so the colour profile follows its output
type styles struct {
	header   lipgloss.Style
	turn     lipgloss.Style
	folded   lipgloss.Style
	allIn    lipgloss.Style
	cell     lipgloss.Style
	pot      lipgloss.Style
	awarded  lipgloss.Style
	logEntry lipgloss.Style
	border   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1),
		turn: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true).
			Padding(0, 1),
		folded: r.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1),
		allIn: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			Padding(0, 1),
		cell: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Padding(0, 1),
		pot: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		awarded: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		logEntry: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		border: r.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")),
	}
}
