package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	selectedRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))

	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	footerStyle = lipgloss.NewStyle().Faint(true)

	inlineErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	toastSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	toastErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	toastInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)

	dialogErrStyle = dialogStyle.BorderForeground(lipgloss.Color("196"))

	statusActiveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)
