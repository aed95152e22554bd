package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvpreview/internal/core"
)

func writeCSV(t *testing.T, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("name,email,city\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "user%d,user%d@example.com,town\n", i, i)
	}
	path := filepath.Join(t.TempDir(), "list.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func newModel(t *testing.T, path string) Model {
	t.Helper()
	m, err := New(context.Background(), core.NewService(nil, core.Options{SampleSize: 2}), path)
	require.NoError(t, err)
	return m
}

// send runs one message through Update and any command it returns, the
// way the program loop would for a synchronous command.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			if _, ok := out.(loadedMsg); ok {
				return send(t, m, out)
			}
		}
	}
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_LoadSyncsWidgets(t *testing.T) {
	m := newModel(t, writeCSV(t, 12))

	m = send(t, m, keyMsg("enter"))

	ws := m.Workspace()
	assert.Equal(t, paneColumns, m.focus)
	assert.Equal(t, "name", ws.Columns.Value())
	assert.Len(t, ws.Columns.Options(), 3)
	assert.Equal(t, "0", ws.Start.Value())
	assert.Equal(t, "12", ws.Stop.Value())
	assert.Contains(t, m.View(), "list.csv: 12 rows, 3 columns")
}

func TestModel_ColumnAndRangeKeys(t *testing.T) {
	m := newModel(t, writeCSV(t, 12))
	m = send(t, m, keyMsg("enter"))

	m = send(t, m, keyMsg("down"))
	assert.Equal(t, "email", m.Workspace().Columns.Value())

	m = send(t, m, keyMsg("tab"))
	require.Equal(t, paneRange, m.focus)

	// The high handle is active after a load.
	m = send(t, m, keyMsg("left"))
	m = send(t, m, keyMsg("left"))
	assert.Equal(t, "10", m.Workspace().Stop.Value())

	m = send(t, m, keyMsg("space"))
	m = send(t, m, keyMsg("L"))
	assert.Equal(t, "10", m.Workspace().Start.Value())
	m = send(t, m, keyMsg("right"))
	assert.Equal(t, "10", m.Workspace().Start.Value(), "low handle stops at the high one")

	m = send(t, m, keyMsg("left"))
	view := m.View()
	assert.Contains(t, view, "Start: 9")
	assert.Contains(t, view, "user9@example.com")
}

func TestModel_BadFileShowsError(t *testing.T) {
	m := newModel(t, writeCSV(t, 3))
	m = send(t, m, keyMsg("enter"))

	m.path.SetValue(filepath.Join(t.TempDir(), "missing.csv"))
	m.setFocus(panePath)
	m = send(t, m, keyMsg("enter"))

	assert.Equal(t, "3", m.Workspace().Stop.Value(), "previous table stays")
	assert.Contains(t, m.View(), "READ001")
}

func TestModel_EmptyPathIsNoop(t *testing.T) {
	m := newModel(t, "")
	m = send(t, m, keyMsg("enter"))

	assert.Equal(t, panePath, m.focus)
	assert.Empty(t, m.Workspace().Columns.Options())
	assert.Contains(t, m.View(), "No file loaded")
}

func TestRangeBar(t *testing.T) {
	assert.Equal(t, "[----]", rangeBar(0, 0, 0, 4))
	assert.Equal(t, "[====]", rangeBar(0, 10, 10, 4))
	assert.Equal(t, "[-==-]", rangeBar(3, 8, 10, 4))
}
