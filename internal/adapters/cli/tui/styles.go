package tui

import "github.com/charmbracelet/lipgloss"

var (
	checkedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	uncheckedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle     = lipgloss.NewStyle().Bold(true)
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	compliantStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	partialStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	nonCompliantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	unknownStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)
