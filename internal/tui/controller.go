package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Makepad-fr/tada-remote/internal/model"
	"github.com/Makepad-fr/tada-remote/internal/store/prefs"
	"github.com/Makepad-fr/tada-remote/internal/ui"
)

// Results of network calls. Each carries what the handler needs to finish
// the operation; none of them is retried.
type itemsLoadedMsg struct {
	items   []model.Item
	animate bool
}
type requestFailedMsg struct {
	op  string
	err error
}
type addedMsg struct{}
type toggledMsg struct {
	id   string
	done bool
	err  error
}
type deletedMsg struct {
	id  string
	err error
}
type rowRemovedMsg struct{ id string }
type clearedMsg struct{ res model.ClearResult }
type undoneMsg struct{ res model.UndoResult }
type undoAvailabilityMsg struct{ available bool }
type highlightExpiredMsg struct{ id string }
type prefsChangedMsg struct{ prefs prefs.Prefs }
type prefsClosedMsg struct{}

// ---------------------------------------------------
// Commands (run off the Update goroutine)
// ---------------------------------------------------

func (m Model) renderSync(animate bool) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		items, err := b.Items(ctx)
		if err != nil {
			return requestFailedMsg{op: "render", err: err}
		}
		return itemsLoadedMsg{items: items, animate: animate}
	}
}

func (m Model) checkUndo() tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		la, err := b.LastAction(ctx)
		if err != nil {
			return requestFailedMsg{op: "last-action", err: err}
		}
		return undoAvailabilityMsg{available: la.Undoable()}
	}
}

func (m Model) addCmd(task string) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		if err := b.Add(ctx, task); err != nil {
			return requestFailedMsg{op: "add", err: err}
		}
		return addedMsg{}
	}
}

func (m Model) toggleCmd(id string, done bool) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		return toggledMsg{id: id, done: done, err: b.Update(ctx, id, done)}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		return deletedMsg{id: id, err: b.Delete(ctx, id)}
	}
}

func (m Model) clearCmd() tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		res, err := b.Clear(ctx)
		if err != nil {
			return requestFailedMsg{op: "clear", err: err}
		}
		return clearedMsg{res: res}
	}
}

func (m Model) undoCmd() tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		res, err := b.Undo(ctx)
		if err != nil {
			return requestFailedMsg{op: "undo", err: err}
		}
		return undoneMsg{res: res}
	}
}

func (m Model) waitForPrefs() tea.Cmd {
	ch := m.prefChanges
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return prefsClosedMsg{}
		}
		return prefsChangedMsg{prefs: p}
	}
}

func expireHighlight(d time.Duration, id string) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return highlightExpiredMsg{id: id} })
}

func removeAfter(d time.Duration, id string) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return rowRemovedMsg{id: id} })
}

// ---------------------------------------------------
// User actions (called from Update)
// ---------------------------------------------------

// submit sends the inline input as a new task. Blank input sends nothing.
// The input is cleared once the server has accepted the task.
func (m Model) submit() (Model, tea.Cmd) {
	task := strings.TrimSpace(m.ti.Value())
	if task == "" {
		m.addErr = "Task cannot be empty"
		return m, nil
	}
	m.addErr = ""
	return m, m.addCmd(task)
}

// toggle flips the selected row before the server confirms.
func (m Model) toggle() (Model, tea.Cmd) {
	r, ok := m.selected()
	if !ok || r.Deleting {
		return m, nil
	}
	done := !r.Done
	m.rows.SetDone(r.ID, done)
	cmd := m.syncList()
	return m, tea.Batch(cmd, m.toggleCmd(r.ID, done))
}

func (m Model) remove() (Model, tea.Cmd) {
	r, ok := m.selected()
	if !ok || r.Deleting {
		return m, nil
	}
	m.rows.SetDeleting(r.ID, true)
	cmd := m.syncList()
	return m, tea.Batch(cmd, m.deleteCmd(r.ID))
}

func (m Model) undo() (Model, tea.Cmd) {
	return m, m.undoCmd()
}

func (m Model) clearAll() (Model, tea.Cmd) {
	return m, m.clearCmd()
}

// toggleDark switches theme right away and stores the preference.
func (m Model) toggleDark() (Model, tea.Cmd) {
	m.setDark(!m.dark)
	if err := m.prefs.SetDarkMode(m.dark); err != nil {
		m.log.Warn("save preferences", zap.Error(err))
	}
	return m, nil
}

func (m *Model) setDark(on bool) {
	if m.dark == on {
		return
	}
	m.dark = on
	m.theme = ui.For(on)
	m.applyTheme()
}

func (m *Model) setUndo(on bool) {
	m.undoEnabled = on
	m.keys.Undo.SetEnabled(on)
}

// ---------------------------------------------------
// Results (called from Update)
// ---------------------------------------------------

func (m Model) handleResult(msg tea.Msg) (Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case requestFailedMsg:
		// Failures are logged and otherwise ignored; the UI keeps its state.
		m.loading = false
		m.log.Warn("request failed", zap.String("op", msg.op), zap.Error(msg.err))
		return m, nil, true

	case itemsLoadedMsg:
		m.loading = false
		m.rows.Reconcile(msg.items)
		var cmds []tea.Cmd
		if msg.animate && m.animation > 0 {
			if id, ok := m.rows.MarkLastNew(); ok {
				cmds = append(cmds, expireHighlight(m.animation, id))
			}
		}
		cmds = append(cmds, m.syncList())
		return m, tea.Batch(cmds...), true

	case highlightExpiredMsg:
		m.rows.ClearNew(msg.id)
		return m, m.syncList(), true

	case addedMsg:
		m.ti.SetValue("")
		m.ti.Blur()
		m.adding = false
		m.addErr = ""
		m.resize()
		return m, tea.Batch(m.renderSync(true), m.checkUndo()), true

	case toggledMsg:
		if msg.err != nil {
			m.log.Warn("request failed", zap.String("op", "update"), zap.String("id", msg.id), zap.Error(msg.err))
			// Roll back unless something newer already changed the row.
			if r, ok := m.rows.Get(msg.id); ok && r.Done == msg.done {
				m.rows.SetDone(msg.id, !msg.done)
			}
			return m, m.syncList(), true
		}
		return m, m.checkUndo(), true

	case deletedMsg:
		if msg.err != nil {
			m.log.Warn("request failed", zap.String("op", "delete"), zap.String("id", msg.id), zap.Error(msg.err))
			m.rows.SetDeleting(msg.id, false)
			return m, m.syncList(), true
		}
		m.rows.ConfirmDelete(msg.id)
		return m, tea.Batch(removeAfter(m.deleteDelay, msg.id), m.checkUndo()), true

	case rowRemovedMsg:
		// An undo inside the delay may have brought the item back.
		m.rows.RemoveConfirmed(msg.id)
		return m, m.syncList(), true

	case clearedMsg:
		if !msg.res.OK() {
			m.log.Warn("clear rejected", zap.String("status", msg.res.Status))
			return m, m.checkUndo(), true
		}
		m.rows.Clear()
		cmd := m.syncList()
		return m, tea.Batch(cmd, m.renderSync(false), m.checkUndo()), true

	case undoneMsg:
		switch {
		case msg.res.NoAction():
			m.setUndo(false)
			return m, nil, true
		case msg.res.OK():
			m.setUndo(true)
			var render tea.Cmd
			if items := msg.res.Items(); items != nil {
				m.rows.Reconcile(items)
				render = m.syncList()
			} else {
				render = m.renderSync(false)
			}
			return m, tea.Batch(render, m.checkUndo()), true
		default:
			m.log.Warn("undo: unexpected status", zap.String("status", msg.res.Status))
			return m, nil, true
		}

	case undoAvailabilityMsg:
		m.setUndo(msg.available)
		return m, nil, true

	case prefsChangedMsg:
		m.setDark(msg.prefs.DarkMode)
		return m, m.waitForPrefs(), true

	case prefsClosedMsg:
		m.prefChanges = nil
		return m, nil, true
	}
	return m, nil, false
}
