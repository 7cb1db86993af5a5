package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/desertthunder/setlist/internal/cache"
	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	ConfirmView
	RunningView
	ResultView
)

// Store is the snapshot backend the TUI lists and clears.
type Store interface {
	models.SnapshotStore
	models.SnapshotCatalog
}

// Options carries everything the actions need besides the engine.
type Options struct {
	Scenario  tasks.ScenarioOpts
	Capacity  int   // zero runs scenarios without a cache
	Threshold int64
	Store     Store // nil when persistence is disabled
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.Engine
	opts         Options
	width        int
	height       int
	menu         list.Model
	pending      Action
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	result       actionResult
	spinner      spinner.Model
	help         help.Model
	keys         keyMap
	notice       string
	copyText     func(string) error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.Engine, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NopLogger()
	}

	menu := list.New(menuItems(), list.NewDefaultDelegate(), 0, 0)
	menu.Title = "setlist"
	menu.SetFilteringEnabled(false)
	menu.SetShowHelp(false)

	return &Model{
		ctx:      ctx,
		view:     MenuView,
		engine:   engine,
		opts:     opts,
		menu:     menu,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
		keys:     newKeyMap(),
		copyText: clipboard.WriteAll,
	}
}

// Init implements [tea.Model]. The menu needs no initial command.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MenuView:
			return m.handleMenuKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case RunningView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != RunningView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.progress = msg.data.(tasks.ProgressUpdate)
			return m, m.waitForProgress()
		case MsgActionComplete:
			m.result = msg.data.(actionResult)
			m.progressChan, m.done = nil, nil
			m.view = ResultView
			return m, nil
		}
	}

	if m.view == MenuView {
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case MenuView:
		return m.renderMenu()
	case ConfirmView:
		return m.renderConfirm()
	case RunningView:
		return m.renderRunning()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		selected, ok := m.menu.SelectedItem().(actionItem)
		if !ok {
			return m, nil
		}
		switch selected.action {
		case ActionQuit:
			return m, tea.Quit
		case ActionClear:
			m.pending = ActionClear
			m.view = ConfirmView
			return m, nil
		default:
			return m, m.start(selected.action)
		}
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.start(m.pending)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = MenuView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.copy):
		if m.result.err != nil || m.result.output == "" {
			return m, nil
		}
		if err := m.copyText(m.result.output); err != nil {
			m.opts.Logger.Warn("clipboard unavailable", "error", err)
			m.notice = "Clipboard unavailable"
		} else {
			m.notice = "Copied to clipboard"
		}
		return m, nil
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.view = MenuView
		m.result = actionResult{}
		m.progress = tasks.ProgressUpdate{}
		m.notice = ""
		return m, nil
	}
	return m, nil
}

// start runs action in the background and streams its progress back as messages.
func (m *Model) start(action Action) tea.Cmd {
	m.view = RunningView
	m.pending = action
	m.progress = tasks.ProgressUpdate{Message: "Starting..."}
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan Msg, 1)

	progress, done := m.progressChan, m.done
	go func() {
		output, err := m.execute(action, progress)
		close(progress)
		done <- actionCompleteMsg(action, output, err)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

// waitForProgress blocks on the next update. Once the channel closes it yields the completion message.
func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

// execute performs action and renders its output as text.
func (m *Model) execute(action Action, progress chan<- tasks.ProgressUpdate) (string, error) {
	switch action {
	case ActionRun:
		opts := m.opts.Scenario
		if m.opts.Capacity > 0 {
			opts.Cache = cache.New(cache.Options{
				Capacity:         m.opts.Capacity,
				PersistThreshold: m.opts.Threshold,
				Store:            m.opts.Store,
				Logger:           m.opts.Logger,
			})
		}
		res, err := m.engine.Run(m.ctx, progress, opts)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		b.Write(formatter.ScenarioSummary(res))
		for _, p := range res.Sample {
			b.WriteString("\n")
			b.Write(formatter.PlaylistToText(p))
		}
		return b.String(), nil

	case ActionCompare:
		cmp, err := m.engine.Compare(m.ctx, progress, m.opts.Scenario)
		if err != nil {
			return "", err
		}
		return string(formatter.ComparisonSummary(cmp)), nil

	case ActionDemo:
		playlists, err := m.engine.Demo(m.ctx)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for i, p := range playlists {
			if i > 0 {
				b.WriteString("\n")
			}
			b.Write(formatter.PlaylistToText(p))
		}
		return b.String(), nil

	case ActionList:
		if m.opts.Store == nil {
			return "", shared.ErrPersistenceDisabled
		}
		infos, err := m.opts.Store.List(m.ctx)
		if err != nil {
			return "", err
		}
		return string(formatter.SnapshotTable(infos)), nil

	case ActionClear:
		if m.opts.Store == nil {
			return "", shared.ErrPersistenceDisabled
		}
		if err := m.opts.Store.Clear(m.ctx); err != nil {
			return "", err
		}
		return "Stored playlists cleared.", nil

	default:
		return "", fmt.Errorf("%w: unknown action %d", shared.ErrInvalidInput, action)
	}
}

func (m *Model) renderMenu() string {
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.menu.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Clear every stored playlist?")
	info := styles.warn.Render("This cannot be undone.")

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func (m *Model) renderRunning() string {
	title := styles.title.Render(actionTitle(m.pending))

	var phase string
	switch m.progress.Phase {
	case tasks.BuildPlaylists, tasks.FillCache:
		phase = fmt.Sprintf("%s (%d/%d)", m.progress.Phase, m.progress.Step, m.progress.Total)
	default:
		phase = m.progress.Phase.String()
	}

	message := m.progress.Message
	if m.width > 4 {
		message = truncate.StringWithTail(message, uint(m.width-4), "...")
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s", title, m.spinner.View(), styles.phase.Render(phase), styles.help.Render(message))
}

func (m *Model) renderResult() string {
	if m.result.err != nil {
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
		msg := styles.err.Render(fmt.Sprintf("%s failed: %v", actionTitle(m.result.action), m.result.err))
		return fmt.Sprintf("%s\n\n%s", msg, helpView)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.copy, m.keys.quit})
	title := styles.ok.Render("✓ " + actionTitle(m.result.action))
	if m.notice != "" {
		title += "  " + styles.help.Render(m.notice)
	}

	output := strings.TrimRight(m.result.output, "\n")
	if m.width > 8 {
		output = wordwrap.String(output, m.width-8)
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, styles.box.Render(output), helpView)
}

func actionTitle(a Action) string {
	for _, item := range menuItems() {
		if i := item.(actionItem); i.action == a {
			return i.title
		}
	}
	return "Action"
}
