package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/devbush/compliancecheck/internal/domain"
)

// fileSelectHeight is how many files are listed at once
const fileSelectHeight = 10

// FileSelectModel lets the user untick picked recordings before a run.
// Every file starts checked and at least one must stay checked to confirm.
type FileSelectModel struct {
	files   []domain.SelectedFile
	checked []bool
	cursor  int
	offset  int // first visible row
	height  int
	done    bool
}

// NewFileSelectModel creates a selector with every file checked
func NewFileSelectModel(files []domain.SelectedFile) FileSelectModel {
	checked := make([]bool, len(files))
	for i := range checked {
		checked[i] = true
	}
	return FileSelectModel{
		files:   files,
		checked: checked,
		height:  fileSelectHeight,
	}
}

func (m FileSelectModel) Init() tea.Cmd {
	return nil
}

func (m FileSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		m.moveTo(m.cursor - 1)
	case "down", "j":
		m.moveTo(m.cursor + 1)
	case "pgup":
		m.moveTo(m.cursor - m.height)
	case "pgdown":
		m.moveTo(m.cursor + m.height)
	case "home", "g":
		m.moveTo(0)
	case "end", "G":
		m.moveTo(len(m.files) - 1)
	case " ", "x":
		if len(m.files) > 0 {
			m.checked[m.cursor] = !m.checked[m.cursor]
		}
	case "a":
		// Check all, or clear all when everything is already checked
		all := m.count() < len(m.files)
		for i := range m.checked {
			m.checked[i] = all
		}
	case "enter":
		if m.count() > 0 {
			m.done = true
			return m, tea.Quit
		}
	case "q", "ctrl+c", "esc":
		m.done = false
		return m, tea.Quit
	}
	return m, nil
}

// moveTo clamps the cursor and scrolls so it stays visible
func (m *FileSelectModel) moveTo(i int) {
	m.cursor = max(0, min(i, len(m.files)-1))
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m FileSelectModel) count() int {
	n := 0
	for _, c := range m.checked {
		if c {
			n++
		}
	}
	return n
}

func (m FileSelectModel) selectedSize() int64 {
	var total int64
	for i, f := range m.files {
		if m.checked[i] {
			total += f.Size
		}
	}
	return total
}

func (m FileSelectModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Select files to analyze:"))
	sb.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.files))
	if m.offset > 0 {
		sb.WriteString(hintStyle.Render(fmt.Sprintf("  ↑ %d more", m.offset)))
		sb.WriteString("\n")
	}
	for i := m.offset; i < end; i++ {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		box, style := "[ ]", uncheckedStyle
		if m.checked[i] {
			box, style = "[x]", checkedStyle
		}
		f := m.files[i]
		sb.WriteString(style.Render(fmt.Sprintf("%s%s %s (%s)", cursor, box, f.Name, humanize.IBytes(uint64(f.Size)))))
		sb.WriteString("\n")
	}
	if end < len(m.files) {
		sb.WriteString(hintStyle.Render(fmt.Sprintf("  ↓ %d more", len(m.files)-end)))
		sb.WriteString("\n")
	}

	if n := m.count(); n == 0 {
		sb.WriteString("\n(select at least one file)\n")
	} else {
		fmt.Fprintf(&sb, "\n%d of %d selected, %s to upload\n", n, len(m.files), humanize.IBytes(uint64(m.selectedSize())))
	}
	sb.WriteString(hintStyle.Render("(space=toggle, a=all, enter=analyze, q=cancel)"))
	sb.WriteString("\n")

	return sb.String()
}

// Selected returns the checked files in their original order
func (m FileSelectModel) Selected() []domain.SelectedFile {
	result := make([]domain.SelectedFile, 0, m.count())
	for i, f := range m.files {
		if m.checked[i] {
			result = append(result, f)
		}
	}
	return result
}

// Cancelled returns true if the user left without confirming
func (m FileSelectModel) Cancelled() bool {
	return !m.done
}

// RunFileSelect shows the selector and returns the files to analyze.
// A nil slice means the user cancelled.
func RunFileSelect(files []domain.SelectedFile) ([]domain.SelectedFile, error) {
	finalModel, err := tea.NewProgram(NewFileSelectModel(files)).Run()
	if err != nil {
		return nil, err
	}

	result := finalModel.(FileSelectModel)
	if result.Cancelled() {
		return nil, nil
	}
	return result.Selected(), nil
}
