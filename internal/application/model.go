// Package application is the terminal front end: a file path input, the
// email column list and the start/stop range, driven by the same workspace
// models as the browser UI.
package application

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/preview"
)

/* ----------------------------------------
	PANES
---------------------------------------- */

type pane int

const (
	panePath pane = iota
	paneColumns
	paneRange
	paneCount
)

// Handle indexes for preview.Slider.Nudge.
const (
	handleLow  = 0
	handleHigh = 1
)

/* ----------------------------------------
	MESSAGES
---------------------------------------- */

// loadedMsg carries a finished pipeline run back to Update.
type loadedMsg struct {
	res preview.Result
	err error
}

/* ----------------------------------------
	MODEL
---------------------------------------- */

type Model struct {
	ctx context.Context
	svc *core.Service
	ws  *core.Workspace

	path   textinput.Model
	keys   keyMap
	help   help.Model
	focus  pane
	handle int
	width  int

	// loading counts runs in flight; results may arrive out of order.
	loading int
	status  string
}

// New creates a model with its own workspace. A non-empty path is loaded on
// start.
func New(ctx context.Context, svc *core.Service, path string) (Model, error) {
	ws, _, err := svc.OpenWorkspace("")
	if err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "path/to/recipients.csv"
	ti.Prompt = "File: "
	ti.CharLimit = 4096
	ti.SetValue(path)
	ti.Focus()

	return Model{
		ctx:    ctx,
		svc:    svc,
		ws:     ws,
		path:   ti,
		keys:   defaultKeys(),
		help:   help.New(),
		handle: handleHigh,
	}, nil
}

// Workspace exposes the widget models, mostly for tests.
func (m Model) Workspace() *core.Workspace {
	return m.ws
}

func (m Model) Init() tea.Cmd {
	if strings.TrimSpace(m.path.Value()) != "" {
		return tea.Batch(textinput.Blink, m.loadCmd())
	}
	return textinput.Blink
}

// loadCmd runs the pipeline off the UI goroutine. An empty path is an empty
// selection.
func (m *Model) loadCmd() tea.Cmd {
	var files []preview.SelectedFile
	if p := strings.TrimSpace(m.path.Value()); p != "" {
		files = []preview.SelectedFile{preview.LocalFile{Path: p}}
	}
	m.loading++

	ctx, svc, ws := m.ctx, m.svc, m.ws
	return func() tea.Msg {
		res, err := svc.Preview(ctx, ws, files)
		return loadedMsg{res: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.loading--
		switch {
		case msg.res.Skipped, msg.res.Superseded:
		case msg.err != nil:
			m.status = ""
		default:
			m.status = "Loaded " + msg.res.File
			m.handle = handleHigh
			m.setFocus(paneColumns)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % paneCount)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + paneCount - 1) % paneCount)
		return m, nil
	}

	switch m.focus {
	case panePath:
		if key.Matches(msg, m.keys.Load) {
			return m, m.loadCmd()
		}
		var cmd tea.Cmd
		m.path, cmd = m.path.Update(msg)
		return m, cmd

	case paneColumns:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.moveColumn(-1)
		case key.Matches(msg, m.keys.Down):
			m.moveColumn(1)
		}

	case paneRange:
		switch {
		case key.Matches(msg, m.keys.Handle):
			m.handle = 1 - m.handle
		case key.Matches(msg, m.keys.Left):
			m.nudge(-1)
		case key.Matches(msg, m.keys.Right):
			m.nudge(1)
		case key.Matches(msg, m.keys.JumpBack):
			m.nudge(-10)
		case key.Matches(msg, m.keys.Jump):
			m.nudge(10)
		}
	}
	return m, nil
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	if p == panePath {
		m.path.Focus()
	} else {
		m.path.Blur()
	}
}

// moveColumn selects the option delta steps away from the current one.
func (m *Model) moveColumn(delta int) {
	opts := m.ws.Columns.Options()
	if len(opts) == 0 {
		return
	}
	cur := 0
	for i, o := range opts {
		if o.Value == m.ws.Columns.Value() {
			cur = i
			break
		}
	}
	next := min(max(cur+delta, 0), len(opts)-1)
	_ = m.ws.SetEmailKey(opts[next].Value)
}

func (m *Model) nudge(delta int) {
	if !m.ws.Slider.Configured() {
		return
	}
	m.ws.Slider.Nudge(m.handle, delta)
}
