package output

import "github.com/charmbracelet/lipgloss"

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func TerminalFormatAsDim(text string) string {
	return dimStyle.Render(text)
}

func TerminalFormatAsError(text string) string {
	return errorStyle.Render(text)
}
