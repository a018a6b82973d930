package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/devbush/compliancecheck/internal/domain"
)

// Conversation is the chat session driven by ChatModel
type Conversation interface {
	Ask(ctx context.Context, question string) (string, error)
	History() []domain.ChatMessage
}

type answerMsg struct {
	answer string
	err    error
}

const (
	defaultChatWidth  = 80
	defaultChatHeight = 20
	// header, blank line, input and help line
	chatChrome = 5
)

// ChatModel is the bubbletea model for the follow-up chat
type ChatModel struct {
	ctx      context.Context
	conv     Conversation
	title    string
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	waiting  bool
	lastErr  error
	width    int
}

// NewChatModel creates a chat view over conv
func NewChatModel(ctx context.Context, conv Conversation, title string) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about your compliance results..."
	ti.CharLimit = 2000
	ti.Width = defaultChatWidth - 4
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := ChatModel{
		ctx:      ctx,
		conv:     conv,
		title:    title,
		input:    ti,
		viewport: viewport.New(defaultChatWidth, defaultChatHeight-chatChrome),
		spinner:  sp,
		width:    defaultChatWidth,
	}
	m.refresh()
	return m
}

func (m ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chatChrome, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if m.waiting || question == "" {
				return m, nil
			}
			if question == "/quit" || question == "/exit" {
				return m, tea.Quit
			}
			m.input.Reset()
			m.waiting = true
			m.lastErr = nil
			m.refresh()
			return m, tea.Batch(m.ask(question), m.spinner.Tick)
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		m.waiting = false
		m.lastErr = msg.err
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m ChatModel) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.conv.Ask(m.ctx, question)
		return answerMsg{answer: answer, err: err}
	}
}

func (m *ChatModel) refresh() {
	content := RenderConversation(m.conv.History(), m.width)
	if m.waiting {
		content += "\n" + m.spinner.View() + hintStyle.Render(" Thinking...")
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m ChatModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	if m.lastErr != nil {
		sb.WriteString(errorStyle.Render("Error: " + m.lastErr.Error()))
	} else {
		sb.WriteString(hintStyle.Render("(enter=send, pgup/pgdown=scroll, esc=quit)"))
	}
	sb.WriteString("\n")

	return sb.String()
}

// Waiting reports whether a question is in flight
func (m ChatModel) Waiting() bool {
	return m.waiting
}

// RenderConversation formats chat messages for display, wrapping content
// to width
func RenderConversation(history []domain.ChatMessage, width int) string {
	body := lipgloss.NewStyle().PaddingLeft(2)
	if width > 4 {
		body = body.Width(width - 2)
	}

	var sb strings.Builder
	for i, msg := range history {
		if i > 0 {
			sb.WriteString("\n")
		}
		label := assistantStyle.Render("Assistant")
		if msg.Role == domain.RoleUser {
			label = userStyle.Render("You")
		}
		sb.WriteString(label)
		if !msg.Timestamp.IsZero() {
			sb.WriteString(hintStyle.Render(" " + msg.Timestamp.Format("15:04")))
		}
		sb.WriteString("\n")
		sb.WriteString(body.Render(msg.Content))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RunChat runs the interactive chat until the user quits
func RunChat(ctx context.Context, conv Conversation, title string) error {
	p := tea.NewProgram(NewChatModel(ctx, conv, title), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
