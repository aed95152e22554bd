package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/csvpreview/internal/preview"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrInvalidRange      = errors.New("invalid range")
	ErrNoTable           = errors.New("no table loaded")
)

// Workspace is one user's preview screen: the widget models a UI renders
// and the Orchestrator that writes to them.
type Workspace struct {
	ID string

	Columns preview.Select
	Slider  preview.Slider
	Start   preview.Field
	Stop    preview.Field
	Banner  preview.Banner

	orch *preview.Orchestrator

	mu       sync.Mutex
	file     string
	lastUsed time.Time
}

// NewWorkspace wires a fresh set of widget models to a pipeline.
func NewWorkspace(id string, reader *preview.Reader, parser preview.TableParser) (*Workspace, error) {
	ws := &Workspace{ID: id, lastUsed: time.Now()}

	orch, err := preview.NewOrchestrator(reader, parser, preview.Handles{
		Columns:  &ws.Columns,
		Slider:   &ws.Slider,
		Start:    &ws.Start,
		Stop:     &ws.Stop,
		Notifier: &ws.Banner,
	})
	if err != nil {
		return nil, fmt.Errorf("workspace %s: %w", id, err)
	}
	ws.orch = orch
	return ws, nil
}

// Load runs the pipeline for a file-input change.
func (w *Workspace) Load(ctx context.Context, files []preview.SelectedFile) (preview.Result, error) {
	w.touch()

	res, err := w.orch.HandleChange(ctx, files)
	if err == nil && res.Table != nil && !res.Superseded {
		w.mu.Lock()
		w.file = res.File
		w.mu.Unlock()
	}
	return res, err
}

// State returns the pipeline state.
func (w *Workspace) State() preview.State {
	return w.orch.State()
}

// Table returns the table on screen, or nil.
func (w *Workspace) Table() *preview.Table {
	return w.orch.Table()
}

// FileName returns the name of the file on screen.
func (w *Workspace) FileName() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file
}

// SetEmailKey selects the email column.
func (w *Workspace) SetEmailKey(column string) error {
	w.touch()
	if err := w.Columns.Choose(column); err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	return nil
}

// Slide moves the range handles. The start and stop fields follow through
// the slider's hook.
func (w *Workspace) Slide(lo, hi int) (int, int, error) {
	w.touch()
	if !w.Slider.Configured() {
		return 0, 0, ErrNoTable
	}
	lo, hi = w.Slider.Slide(lo, hi)
	return lo, hi, nil
}

// Selection reads the email key and range from the widgets.
func (w *Workspace) Selection() (Selection, error) {
	if w.Table() == nil {
		return Selection{}, ErrNoTable
	}
	start, err := w.Start.Int()
	if err != nil {
		return Selection{}, fmt.Errorf("%w: start %q", ErrInvalidRange, w.Start.Value())
	}
	stop, err := w.Stop.Int()
	if err != nil {
		return Selection{}, fmt.Errorf("%w: stop %q", ErrInvalidRange, w.Stop.Value())
	}
	return Selection{EmailKey: w.Columns.Value(), Start: start, Stop: stop}, nil
}

// Recipients returns up to limit values of the email column for the rows in
// the selected range, along with the number of rows in the range.
func (w *Workspace) Recipients(limit int) ([]string, int, error) {
	table := w.Table()
	sel, err := w.Selection()
	if err != nil {
		return nil, 0, err
	}
	if err := sel.Validate(table); err != nil {
		return nil, 0, err
	}

	rows := table.Slice(sel.Start, sel.Stop)
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	out := make([]string, 0, limit)
	for _, row := range rows[:limit] {
		out = append(out, row[sel.EmailKey])
	}
	return out, len(rows), nil
}

// Snapshot is the workspace as the page and /preview/state see it.
type Snapshot struct {
	ID         string       `json:"id"`
	State      string       `json:"state"`
	File       string       `json:"file,omitempty"`
	Columns    []string     `json:"columns"`
	EmailKey   string       `json:"emailKey"`
	Min        int          `json:"min"`
	Max        int          `json:"max"`
	Start      string       `json:"start"`
	Stop       string       `json:"stop"`
	Rows       int          `json:"rows"`
	Recipients []string     `json:"recipients,omitempty"`
	Selected   int          `json:"selected"`
	Error      *UserMessage `json:"error,omitempty"`
}

// Snapshot captures the current widget state.
func (w *Workspace) Snapshot(sampleSize int) Snapshot {
	opts := w.Columns.Options()
	cols := make([]string, len(opts))
	for i, o := range opts {
		cols[i] = o.Value
	}
	lo, hi := w.Slider.Bounds()

	snap := Snapshot{
		ID:       w.ID,
		State:    w.State().String(),
		File:     w.FileName(),
		Columns:  cols,
		EmailKey: w.Columns.Value(),
		Min:      lo,
		Max:      hi,
		Start:    w.Start.Value(),
		Stop:     w.Stop.Value(),
		Rows:     w.Table().Len(),
	}
	if recipients, n, err := w.Recipients(sampleSize); err == nil {
		snap.Recipients = recipients
		snap.Selected = n
	}
	if err := w.Banner.Err(); err != nil {
		msg := MapError(err)
		snap.Error = &msg
	}
	return snap
}

func (w *Workspace) touch() {
	w.mu.Lock()
	w.lastUsed = time.Now()
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

// Selection is the user's choice of email column and row range. Rows
// [Start, Stop) receive mail.
type Selection struct {
	EmailKey string `json:"emailKey"`
	Start    int    `json:"start"`
	Stop     int    `json:"stop"`
}

// Validate checks the selection against a table.
func (s Selection) Validate(t *preview.Table) error {
	if t == nil {
		return ErrNoTable
	}
	if !t.HasColumn(s.EmailKey) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, s.EmailKey)
	}
	if s.Start < 0 || s.Stop > t.Len() || s.Start > s.Stop {
		return fmt.Errorf("%w: [%d, %d) of %d rows", ErrInvalidRange, s.Start, s.Stop, t.Len())
	}
	return nil
}
