package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/ui/viewstate"
)

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	counterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	formStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("22")).
			Background(lipgloss.Color("157")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("52")).
			Background(lipgloss.Color("217")).
			Padding(0, 1)

	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Strikethrough(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	confirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func styleForStatus(s task.Status) lipgloss.Style {
	if s == task.StatusDone {
		return doneStyle
	}
	return pendingStyle
}

func styleForNotification(kind viewstate.NotificationKind) lipgloss.Style {
	if kind == viewstate.NotifyError {
		return errorStyle
	}
	return successStyle
}
