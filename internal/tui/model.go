// Package tui is the interactive client: it mirrors the server's todo list
// in the terminal and relays every user action back to the server.
//
// All state lives in Model and is only touched from Update. Network calls
// run as tea.Cmds and report back through the messages in controller.go.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Makepad-fr/tada-remote/internal/model"
	"github.com/Makepad-fr/tada-remote/internal/store/prefs"
	"github.com/Makepad-fr/tada-remote/internal/ui"
	"github.com/Makepad-fr/tada-remote/internal/view"
)

// Backend is the todo server as the controller sees it.
type Backend interface {
	Items(ctx context.Context) ([]model.Item, error)
	Add(ctx context.Context, task string) error
	Update(ctx context.Context, id string, done bool) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (model.ClearResult, error)
	Undo(ctx context.Context) (model.UndoResult, error)
	LastAction(ctx context.Context) (model.LastAction, error)
}

// Preferences persists the dark-mode flag.
type Preferences interface {
	Load() (prefs.Prefs, error)
	SetDarkMode(on bool) error
}

// Options wires a Model. Backend and Prefs are required.
type Options struct {
	Context     context.Context
	Backend     Backend
	Prefs       Preferences
	Logger      *zap.Logger
	Animation   time.Duration // new-row highlight
	DeleteDelay time.Duration // confirmed delete -> row removal
	// PrefChanges, when set, delivers preference edits made elsewhere.
	PrefChanges <-chan prefs.Prefs
}

// Model is the Bubble Tea model of the client.
type Model struct {
	ctx         context.Context
	backend     Backend
	prefs       Preferences
	log         *zap.Logger
	animation   time.Duration
	deleteDelay time.Duration
	prefChanges <-chan prefs.Prefs

	rows view.List
	list list.Model
	keys *keyMap

	// Inline add
	adding bool
	ti     textinput.Model
	addErr string

	dark        bool
	theme       ui.Theme
	undoEnabled bool
	loading     bool
	spinner     spinner.Model
	width       int
	height      int
}

// New builds the model and restores the stored dark-mode preference.
func New(opt Options) Model {
	if opt.Context == nil {
		opt.Context = context.Background()
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}

	m := Model{
		ctx:         opt.Context,
		backend:     opt.Backend,
		prefs:       opt.Prefs,
		log:         opt.Logger,
		animation:   opt.Animation,
		deleteDelay: opt.DeleteDelay,
		prefChanges: opt.PrefChanges,
		keys:        defaultKeys(),
		loading:     true,
		width:       80,
		height:      24,
	}

	if p, err := opt.Prefs.Load(); err != nil {
		m.log.Warn("load preferences", zap.Error(err))
	} else {
		m.dark = p.DarkMode
	}
	m.theme = ui.For(m.dark)

	l := list.New(nil, itemDelegate{theme: m.theme}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.DisableQuitKeybindings()
	// u and d belong to undo and delete, not paging.
	l.KeyMap.PrevPage.SetKeys("left", "h", "pgup", "b")
	l.KeyMap.NextPage.SetKeys("right", "l", "pgdown", "f")
	km := m.keys
	l.AdditionalShortHelpKeys = km.short
	l.AdditionalFullHelpKeys = km.full
	m.list = l

	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.Placeholder = "New task..."
	m.ti.CharLimit = 200

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.applyTheme()
	m.resize()
	return m
}

// Init restores the list, asks whether undo is available and starts
// listening for preference changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.renderSync(false),
		m.checkUndo(),
		m.waitForPrefs(),
	)
}

// Run starts the interactive client and blocks until the user quits or ctx
// is cancelled.
func Run(opt Options) error {
	ctx := opt.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// applyTheme pushes the active theme into the list styles and delegate.
func (m *Model) applyTheme() {
	t := m.theme
	m.list.SetDelegate(itemDelegate{theme: t})
	m.list.Styles.Title = t.Title
	m.list.Styles.HelpStyle = t.Help
	m.list.Styles.PaginationStyle = t.Help
	m.list.Styles.StatusBar = t.Muted
	m.list.Title = ui.Header(t, m.rows.Items())
	m.ti.PromptStyle = t.Accent
	m.spinner.Style = t.Accent
}

// syncList rebuilds the list items from the rendered rows.
func (m *Model) syncList() tea.Cmd {
	rows := m.rows.Rows()
	items := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, rowItem{Row: r})
	}
	cmd := m.list.SetItems(items)
	if n := m.rows.Len(); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	m.list.Title = ui.Header(m.theme, m.rows.Items())
	return cmd
}

func (m *Model) resize() {
	h := m.height - 4
	if m.adding {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

// selected returns the row under the cursor.
func (m Model) selected() (view.Row, bool) {
	it, ok := m.list.SelectedItem().(rowItem)
	if !ok {
		return view.Row{}, false
	}
	// The list holds a snapshot; the rows are authoritative.
	return m.rows.Get(it.ID)
}

// Rows exposes the rendered rows, mostly for tests and embedding.
func (m Model) Rows() []view.Row { return m.rows.Rows() }

// DarkMode reports the active theme.
func (m Model) DarkMode() bool { return m.dark }

// UndoEnabled reports whether the undo control is active.
func (m Model) UndoEnabled() bool { return m.undoEnabled }
