package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Network results are applied whatever mode the UI is in.
	if next, cmd, ok := m.handleResult(msg); ok {
		return next, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// add mode
	if m.adding {
		if x, ok := msg.(tea.KeyMsg); ok {
			switch x.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter":
				return m.submit()
			case "esc":
				m.adding = false
				m.addErr = ""
				m.ti.SetValue("")
				m.ti.Blur()
				m.resize()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	if x, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(x, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(x, m.keys.Add):
			m.adding = true
			m.addErr = ""
			m.ti.SetValue("")
			m.resize()
			return m, m.ti.Focus()
		case key.Matches(x, m.keys.Toggle):
			return m.toggle()
		case key.Matches(x, m.keys.Delete):
			return m.remove()
		case key.Matches(x, m.keys.Undo):
			return m.undo()
		case key.Matches(x, m.keys.Clear):
			return m.clearAll()
		case key.Matches(x, m.keys.Theme):
			return m.toggleDark()
		case key.Matches(x, m.keys.Refresh):
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.renderSync(false), m.checkUndo())
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}
