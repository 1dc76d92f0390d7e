package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada-remote/internal/ui"
	"github.com/Makepad-fr/tada-remote/internal/view"
)

// rowItem adapts a rendered row to bubbles/list.Item.
type rowItem struct {
	view.Row
}

func (i rowItem) FilterValue() string { return i.Task }

// itemDelegate renders one row per line: cursor, checkbox, text, and the
// transient new/deleting markers.
type itemDelegate struct {
	theme ui.Theme
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(rowItem)
	if !ok {
		return
	}
	t := d.theme

	box := t.Muted.Render(t.BoxUnchecked)
	if it.Done {
		box = t.Success.Render(t.BoxChecked)
	}
	text := it.Task
	switch {
	case it.Deleting:
		text = t.Deleting.Render(text + "  deleting…")
	case it.Done:
		text = t.Done.Render(text)
	case it.New:
		text = t.New.Render(text)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

// View implements tea.Model.
func (m Model) View() string {
	t := m.theme

	status := t.Muted.Render("undo: unavailable")
	if m.undoEnabled {
		status = t.Accent.Render("undo: available")
	}
	if m.loading {
		status = m.spinner.View() + " " + t.Muted.Render("syncing") + "   " + status
	}
	top := fmt.Sprintf("%s   %s %s", status, t.ToggleIcon, t.Muted.Render(m.server()))

	content := top + "\n" + m.list.View()
	if m.adding {
		title := "Add new task"
		if m.addErr != "" {
			title += ": " + t.Error.Render(m.addErr)
		}
		content += "\n" + t.Border.Render(title+"\n"+m.ti.View())
	}
	return ui.Panel(t, []string{content})
}

func (m Model) server() string {
	if s, ok := m.backend.(interface{ BaseURL() string }); ok {
		return s.BaseURL()
	}
	return ""
}
