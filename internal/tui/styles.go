package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	focusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	formStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	stoppedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	deployingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func statusStyle(s model.SiteStatus) lipgloss.Style {
	switch s {
	case model.SiteRunning:
		return runningStyle
	case model.SiteDeploying:
		return deployingStyle
	}
	return stoppedStyle
}
