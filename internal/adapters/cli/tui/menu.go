package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// MenuOption is one action on the start screen
type MenuOption struct {
	Label       string
	Value       string
	Description string
}

// MenuModel picks one action. Arrows wrap around and the digits 1-9
// choose an option directly.
type MenuModel struct {
	title    string
	options  []MenuOption
	cursor   int
	selected string
}

func NewMenuModel(title string, options []MenuOption) MenuModel {
	return MenuModel{
		title:   title,
		options: options,
	}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	k := keyMsg.String()
	switch {
	case isQuitKey(k):
		return m, tea.Quit
	case len(m.options) == 0:
	case k == "up" || k == "k":
		m.cursor = (m.cursor - 1 + len(m.options)) % len(m.options)
	case k == "down" || k == "j" || k == "tab":
		m.cursor = (m.cursor + 1) % len(m.options)
	case k == "enter":
		m.selected = m.options[m.cursor].Value
		return m, tea.Quit
	default:
		if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(m.options) {
			m.cursor = n - 1
			m.selected = m.options[m.cursor].Value
			return m, tea.Quit
		}
	}
	return m, nil
}

func isQuitKey(k string) bool {
	return k == "q" || k == "ctrl+c" || k == "esc"
}

func (m MenuModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("? "+m.title) + "\n\n")

	for i, opt := range m.options {
		cursor, style := "  ", normalStyle
		if i == m.cursor {
			cursor, style = "> ", selectedStyle
		}
		fmt.Fprintf(&sb, "%s%s\n", cursor, style.Render(fmt.Sprintf("%d. %s", i+1, opt.Label)))
	}

	if len(m.options) > 0 && m.options[m.cursor].Description != "" {
		sb.WriteString("\n" + hintStyle.Render(m.options[m.cursor].Description) + "\n")
	}

	sb.WriteString("\n" + hintStyle.Render("(up/down to move, enter or 1-9 to select, q to quit)") + "\n")
	return sb.String()
}

// Selected returns the chosen value, empty when the user quit
func (m MenuModel) Selected() string {
	return m.selected
}

// RunMenu displays the menu and returns the selection, empty if cancelled
func RunMenu(title string, options []MenuOption) (string, error) {
	finalModel, err := tea.NewProgram(NewMenuModel(title, options)).Run()
	if err != nil {
		return "", err
	}
	return finalModel.(MenuModel).Selected(), nil
}
