package render

import "github.com/charmbracelet/lipgloss"

var (
	accent     = lipgloss.Color("#87CEEB")
	incomeCol  = lipgloss.Color("#5CCB76")
	expenseCol = lipgloss.Color("#F15B5B")
	warnCol    = lipgloss.Color("#FFD54A")
	mutedCol   = lipgloss.Color("#9CA3AF")

	titleStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedCol)
	errStyle   = lipgloss.NewStyle().Foreground(expenseCol).Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5A5A5A")).
			Padding(0, 1).
			Width(22)

	headerStyle = lipgloss.NewStyle().Foreground(accent).Bold(true).Underline(true)
)

func amountStyle(income bool) lipgloss.Style {
	if income {
		return lipgloss.NewStyle().Foreground(incomeCol)
	}
	return lipgloss.NewStyle().Foreground(expenseCol)
}

// Error renders an inline error banner
func Error(msg string) string {
	return errStyle.Render("error: " + msg)
}

// Muted renders secondary status text
func Muted(msg string) string {
	return mutedStyle.Render(msg)
}
