package tui

import "github.com/charmbracelet/lipgloss"

// Styles.
var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	upStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // close >= open
	downStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // close < open
	hoverStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	symbolStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("236"))
	neutralStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	trendStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

func sentimentStyle(sentiment string) lipgloss.Style {
	switch sentiment {
	case "positive":
		return positiveStyle
	case "negative":
		return negativeStyle
	default:
		return neutralStyle
	}
}
