package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// pickerModel - Interactive descriptor selection
// =============================================================================

// pickerModel is the bubbletea model for selecting which discovered
// descriptors to resolve. All entries start selected; space toggles,
// "a" toggles all, enter confirms, q aborts.
type pickerModel struct {
	paths    []string
	selected []bool
	cursor   int
	height   int
	offset   int
	accepted bool
}

// newPickerModel creates a picker over the discovered descriptor paths.
func newPickerModel(paths []string) pickerModel {
	selected := make([]bool, len(paths))
	for i := range selected {
		selected[i] = true
	}
	return pickerModel{
		paths:    paths,
		selected: selected,
		height:   15,
	}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.paths)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case " ":
			m.selected[m.cursor] = !m.selected[m.cursor]
		case "a":
			all := true
			for _, s := range m.selected {
				if !s {
					all = false
					break
				}
			}
			for i := range m.selected {
				m.selected[i] = !all
			}
		case "enter":
			m.accepted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Descriptors"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ toggle  a all  ⏎ resolve  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.paths) {
		end = len(m.paths)
	}

	for i := m.offset; i < end; i++ {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		mark := "[ ]"
		if m.selected[i] {
			mark = "[x]"
		}

		style := listNormalStyle
		if i == m.cursor {
			style = listSelectedStyle
		}
		b.WriteString(cursor + style.Render(mark+" "+m.paths[i]) + "\n")
	}

	if len(m.paths) > m.height {
		b.WriteString("\n" + listDimStyle.Render("…"))
	}
	return b.String()
}

// chosen returns the selected descriptor paths, or nil if the picker was
// aborted.
func (m pickerModel) chosen() []string {
	if !m.accepted {
		return nil
	}
	var out []string
	for i, ok := range m.selected {
		if ok {
			out = append(out, m.paths[i])
		}
	}
	return out
}
