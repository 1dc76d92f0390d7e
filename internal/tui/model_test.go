package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Makepad-fr/tada-remote/internal/api"
	"github.com/Makepad-fr/tada-remote/internal/fakeserver"
	"github.com/Makepad-fr/tada-remote/internal/model"
	"github.com/Makepad-fr/tada-remote/internal/store/prefs"
	"github.com/Makepad-fr/tada-remote/internal/view"
)

type harness struct {
	t      *testing.T
	fs     *fakeserver.Server
	client *api.Client
	prefs  prefs.Store
	logs   *observer.ObservedLogs
	m      Model
}

func newHarness(t *testing.T, seed ...model.Item) *harness {
	t.Helper()
	fs := fakeserver.New(seed...)
	srv := httptest.NewServer(fs.Handler())
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, 5*time.Second)
	require.NoError(t, err)

	h := &harness{t: t, fs: fs, client: client, prefs: prefs.Store{Dir: t.TempDir()}}
	h.m = h.newModel()
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	h.run(h.m.Init())
	return h
}

func (h *harness) newModel() Model {
	core, logs := observer.New(zap.WarnLevel)
	h.logs = logs
	m := New(Options{
		Backend:     h.client,
		Prefs:       h.prefs,
		Logger:      zap.New(core),
		Animation:   time.Millisecond,
		DeleteDelay: time.Millisecond,
	})
	// A blinking cursor schedules a sleeping command on every keystroke.
	m.ti.Cursor.SetMode(cursor.CursorStatic)
	return m
}

var ownPkg = reflect.TypeOf(itemsLoadedMsg{}).PkgPath()

// run executes cmd and feeds every resulting message of this package back
// into the model until nothing is left. Messages from bubbles components
// (cursor blink, spinner ticks) are dropped so the loop terminates.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(h.t, steps, 500, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if msg == nil || reflect.TypeOf(msg).PkgPath() != ownPkg {
			continue
		}
		queue = append(queue, h.sendNoRun(msg))
	}
}

func (h *harness) sendNoRun(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) send(msg tea.Msg) { h.run(h.sendNoRun(msg)) }

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (h *harness) press(k string) { h.send(keyMsg(k)) }

// pressNoRun delivers the key but leaves the resulting command pending.
func (h *harness) pressNoRun(k string) tea.Cmd { return h.sendNoRun(keyMsg(k)) }

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) row(id string) view.Row {
	h.t.Helper()
	r, ok := h.m.rows.Get(id)
	require.True(h.t, ok, "row %q not rendered", id)
	return r
}

func tasks(rows []view.Row) []string {
	out := []string{}
	for _, r := range rows {
		out = append(out, r.Task)
	}
	return out
}

func TestInit_RendersServerList(t *testing.T) {
	h := newHarness(t,
		model.Item{ID: "1", Task: "Buy milk"},
		model.Item{ID: "2", Task: "Walk dog", Done: true},
	)

	assert.Equal(t, []string{"Buy milk", "Walk dog"}, tasks(h.m.Rows()))
	assert.True(t, h.row("2").Done)
	assert.False(t, h.m.loading)
	assert.False(t, h.m.UndoEnabled(), "fresh server has nothing to undo")
}

func TestAdd_AppendsOneIncompleteRow(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "Buy milk"})

	h.press("a")
	require.True(t, h.m.adding)
	h.typeText("  Call mom ")
	h.press("enter")

	rows := h.m.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Call mom", rows[1].Task)
	assert.False(t, rows[1].Done)
	assert.False(t, rows[1].New, "highlight expires")

	assert.False(t, h.m.adding)
	assert.Equal(t, "", h.m.ti.Value())
	assert.True(t, h.m.UndoEnabled())
	assert.Equal(t, 1, h.fs.Count(http.MethodPost, "/add"))
	assert.Len(t, h.fs.Items(), 2)
}

func TestAdd_BlankInputSendsNothing(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "Buy milk"})

	h.press("a")
	h.typeText("   ")
	h.press("enter")

	assert.Len(t, h.m.Rows(), 1)
	assert.Equal(t, 0, h.fs.Count(http.MethodPost, "/add"))
	assert.True(t, h.m.adding, "input stays open")
	assert.NotEmpty(t, h.m.addErr)

	h.press("esc")
	assert.False(t, h.m.adding)
}

func TestAdd_FailureKeepsInput(t *testing.T) {
	h := newHarness(t)
	h.fs.Fail("/add", http.StatusInternalServerError)

	h.press("a")
	h.typeText("Doomed")
	h.press("enter")

	assert.Empty(t, h.m.Rows())
	assert.True(t, h.m.adding)
	assert.Equal(t, "Doomed", h.m.ti.Value())
	assert.Equal(t, 1, h.logs.FilterMessage("request failed").FilterField(zap.String("op", "add")).Len())
}

func TestRenderSync_HighlightsLastRowUntilExpired(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "Buy milk"})

	cmd := h.sendNoRun(itemsLoadedMsg{
		items:   []model.Item{{ID: "1", Task: "Buy milk"}, {ID: "2", Task: "Eggs"}},
		animate: true,
	})
	assert.True(t, h.row("2").New)
	assert.False(t, h.row("1").New)

	h.run(cmd)
	assert.False(t, h.row("2").New)
}

func TestRenderSync_WithoutAnimation(t *testing.T) {
	h := newHarness(t)
	h.sendNoRun(itemsLoadedMsg{items: []model.Item{{ID: "9", Task: "x"}}})
	assert.False(t, h.row("9").New)
}

func TestToggle_IsOptimisticAndPersists(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "Buy milk"})

	cmd := h.pressNoRun(" ")
	assert.True(t, h.row("1").Done, "row flips before the server answers")
	assert.False(t, h.fs.Items()[0].Done)

	h.run(cmd)
	assert.True(t, h.fs.Items()[0].Done)
	assert.True(t, h.m.UndoEnabled())

	// A fresh client sees the persisted state.
	other := newHarness(t, h.fs.Items()...)
	assert.True(t, other.row("1").Done)

	h.press("r")
	assert.True(t, h.row("1").Done)
}

func TestToggle_FailureRollsBack(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "Buy milk"})
	h.fs.Fail("/update/", http.StatusInternalServerError)

	h.press(" ")

	assert.False(t, h.row("1").Done)
	assert.Equal(t, 1, h.logs.FilterField(zap.String("op", "update")).Len())
}

func TestToggle_SelectsRowUnderCursor(t *testing.T) {
	h := newHarness(t,
		model.Item{ID: "1", Task: "one"},
		model.Item{ID: "2", Task: "two"},
	)
	h.press("down")
	h.press(" ")

	assert.False(t, h.row("1").Done)
	assert.True(t, h.row("2").Done)
}

func TestDelete_RemovesRowAfterServerConfirms(t *testing.T) {
	h := newHarness(t,
		model.Item{ID: "1", Task: "one"},
		model.Item{ID: "2", Task: "two"},
	)

	cmd := h.pressNoRun("d")
	assert.True(t, h.row("1").Deleting)
	assert.Len(t, h.fs.Items(), 2)

	h.run(cmd)
	_, ok := h.m.rows.Get("1")
	assert.False(t, ok)
	assert.Equal(t, []string{"two"}, tasks(h.m.Rows()))
	assert.Equal(t, []model.Item{{ID: "2", Task: "two"}}, h.fs.Items())
	assert.True(t, h.m.UndoEnabled())
}

func TestDelete_FailureKeepsRow(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "one"})
	h.fs.Fail("/delete/", http.StatusBadGateway)

	h.press("d")

	r := h.row("1")
	assert.False(t, r.Deleting)
	assert.Equal(t, 1, h.logs.FilterField(zap.String("op", "delete")).Len())
}

func TestDelete_IgnoresRowAlreadyDeleting(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "one"})
	first := h.pressNoRun("d")
	second := h.pressNoRun("d")
	assert.Nil(t, second)

	h.run(first)
	assert.Equal(t, 1, h.fs.Count(http.MethodPost, "/delete/1"))
}

func TestClearAll_EmptiesList(t *testing.T) {
	h := newHarness(t,
		model.Item{ID: "1", Task: "one"},
		model.Item{ID: "2", Task: "two"},
	)

	h.press("C")

	assert.Empty(t, h.m.Rows())
	assert.Empty(t, h.fs.Items())
	assert.True(t, h.m.UndoEnabled())
}

func TestClearAll_FailureKeepsList(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "one"})
	h.fs.Fail("/clear", http.StatusInternalServerError)

	h.press("C")

	assert.Len(t, h.m.Rows(), 1)
	assert.Equal(t, 1, h.logs.FilterField(zap.String("op", "clear")).Len())
}

func TestUndo_DisabledControlSendsNothing(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "one"})
	require.False(t, h.m.UndoEnabled())

	h.press("u")
	assert.Equal(t, 0, h.fs.Count(http.MethodPost, "/undo"))
}

func TestUndo_NoActionDisablesControl(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "one"})
	h.m.setUndo(true)

	h.press("u")

	assert.Equal(t, 1, h.fs.Count(http.MethodPost, "/undo"))
	assert.False(t, h.m.UndoEnabled())
	assert.Len(t, h.m.Rows(), 1)
}

func TestUndo_RestoresClearedList(t *testing.T) {
	h := newHarness(t,
		model.Item{ID: "1", Task: "one"},
		model.Item{ID: "2", Task: "two", Done: true},
	)
	h.press("a")
	h.typeText("three")
	h.press("enter")
	h.press("C")
	require.Empty(t, h.m.Rows())

	h.press("u")

	assert.Equal(t, []string{"one", "two", "three"}, tasks(h.m.Rows()))
	assert.True(t, h.row("2").Done)
	for _, r := range h.m.Rows() {
		assert.False(t, r.New, "undo renders without animation")
	}
	assert.True(t, h.m.UndoEnabled(), "the add can still be undone")

	h.press("u")
	assert.Equal(t, []string{"one", "two"}, tasks(h.m.Rows()))
	assert.False(t, h.m.UndoEnabled(), "nothing left to undo")
}

func TestUndo_FallsBackToRenderSync(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "one"})
	h.fs.OmitUndoTodos = true

	h.press("d")
	require.Empty(t, h.m.Rows())

	h.press("u")
	assert.Equal(t, []string{"one"}, tasks(h.m.Rows()))
}

func TestUndoAvailability_FailureKeepsPriorState(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "one"})
	h.press(" ")
	require.True(t, h.m.UndoEnabled())

	h.fs.Fail("/last-action", http.StatusInternalServerError)
	h.press("r")
	assert.True(t, h.m.UndoEnabled())
	assert.Equal(t, 1, h.logs.FilterField(zap.String("op", "last-action")).Len())
}

func TestRenderFailure_KeepsRows(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "one"})
	h.press(" ")
	require.True(t, h.m.UndoEnabled())
	h.fs.FailExact("/", http.StatusInternalServerError)

	h.press("r")

	assert.Len(t, h.m.Rows(), 1)
	assert.False(t, h.m.loading)
	assert.Equal(t, 1, h.logs.FilterField(zap.String("op", "render")).Len())
	assert.Zero(t, h.logs.FilterField(zap.String("op", "last-action")).Len())
	assert.True(t, h.m.UndoEnabled(), "availability still refreshed")
}

func TestUndo_InsideDeleteDelayKeepsRestoredRow(t *testing.T) {
	h := newHarness(t, model.Item{ID: "1", Task: "one"})

	h.pressNoRun("d")
	require.NoError(t, h.client.Delete(context.Background(), "1"))
	// Confirmed, but the removal tick has not fired yet.
	pending := h.sendNoRun(deletedMsg{id: "1"})
	require.True(t, h.row("1").Deleting)
	h.m.setUndo(true)

	h.press("u")
	require.Len(t, h.fs.Items(), 1)
	assert.False(t, h.row("1").Deleting, "restored row is live again")

	h.run(pending)
	assert.Equal(t, []string{"one"}, tasks(h.m.Rows()))

	h.press(" ")
	assert.True(t, h.row("1").Done, "restored row accepts toggles")
	assert.True(t, h.fs.Items()[0].Done)
}

func TestPagingKeysLeaveUndoAndDeleteAlone(t *testing.T) {
	seed := make([]model.Item, 0, 60)
	for i := 0; i < 60; i++ {
		seed = append(seed, model.Item{ID: strconv.Itoa(i), Task: "task " + strconv.Itoa(i)})
	}
	h := newHarness(t, seed...)
	require.Greater(t, h.m.list.Paginator.TotalPages, 1)
	assert.NotContains(t, h.m.list.KeyMap.PrevPage.Keys(), "u")
	assert.NotContains(t, h.m.list.KeyMap.NextPage.Keys(), "d")

	h.press("l")
	require.Equal(t, 1, h.m.list.Paginator.Page)

	require.False(t, h.m.UndoEnabled())
	h.press("u")
	assert.Equal(t, 1, h.m.list.Paginator.Page, "disabled undo does not page back")
}

func TestDarkMode_TogglesAndPersists(t *testing.T) {
	h := newHarness(t)
	require.False(t, h.m.DarkMode())

	h.press("t")
	assert.True(t, h.m.DarkMode())
	assert.Equal(t, "dark", h.m.theme.Name)

	stored, err := h.prefs.Load()
	require.NoError(t, err)
	assert.True(t, stored.DarkMode)

	// Restart: the preference is restored on load.
	restarted := h.newModel()
	assert.True(t, restarted.DarkMode())

	h.press("t")
	assert.False(t, h.m.DarkMode())
	stored, err = h.prefs.Load()
	require.NoError(t, err)
	assert.False(t, stored.DarkMode)
}

func TestDarkMode_ExternalChange(t *testing.T) {
	h := newHarness(t)
	ch := make(chan prefs.Prefs, 1)
	h.m.prefChanges = ch

	ch <- prefs.Prefs{DarkMode: true}
	cmd := h.m.waitForPrefs()
	next := h.sendNoRun(cmd())
	assert.True(t, h.m.DarkMode())
	require.NotNil(t, next, "keeps listening")

	close(ch)
	h.sendNoRun(next())
	assert.Nil(t, h.m.prefChanges)
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	cmd := h.pressNoRun("q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_ShowsRowsAndState(t *testing.T) {
	h := newHarness(t,
		model.Item{ID: "1", Task: "Buy milk"},
		model.Item{ID: "2", Task: "Walk dog", Done: true},
	)

	out := h.m.View()
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Walk dog")
	assert.Contains(t, out, "undo: unavailable")
	assert.Contains(t, out, "🌙")

	h.press("t")
	assert.Contains(t, h.m.View(), "☀️")

	h.press("a")
	assert.True(t, strings.Contains(h.m.View(), "Add new task"))
}
