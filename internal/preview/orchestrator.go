package preview

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/csvpreview/internal/logging"
)

// State is the Orchestrator's pipeline state.
type State int

const (
	Idle State = iota
	Loading
)

func (s State) String() string {
	if s == Loading {
		return "loading"
	}
	return "idle"
}

// Result describes one HandleChange call.
type Result struct {
	Seq      uint64
	File     string
	Table    *Table
	Duration time.Duration

	// Skipped is set when the change event carried no file.
	Skipped bool

	// Superseded is set when a newer selection was made before this one
	// finished. Its outcome never reaches the UI.
	Superseded bool
}

// Orchestrator runs the read -> parse -> sync pipeline for file-input
// change events and writes the outcome to its Handles.
//
// Every call takes a sequence number. Only the most recent call may touch
// the UI, so with overlapping selections the latest file wins regardless of
// which pipeline finishes first.
type Orchestrator struct {
	reader  *Reader
	parser  TableParser
	handles Handles

	mu    sync.Mutex
	seq   uint64
	state State
	table *Table
}

// NewOrchestrator wires a pipeline to its UI handles. It fails fast with
// ErrMissingHandle if any handle is nil.
func NewOrchestrator(reader *Reader, parser TableParser, h Handles) (*Orchestrator, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	if reader == nil {
		reader = &Reader{}
	}
	if parser == nil {
		parser = CSVParser{}
	}
	return &Orchestrator{
		reader:  reader,
		parser:  parser,
		handles: h,
	}, nil
}

// HandleChange processes a file-input change event. Only the first file is
// used; an empty selection is a no-op. On failure the UI keeps its previous
// state, the error is passed to the Notifier and returned as a *ReadError
// or *ParseError (or the context error). A superseded call returns a nil
// error whatever its outcome.
func (o *Orchestrator) HandleChange(ctx context.Context, files []SelectedFile) (Result, error) {
	if len(files) == 0 || files[0] == nil {
		return Result{Skipped: true}, nil
	}
	file := files[0]

	o.mu.Lock()
	o.seq++
	seq := o.seq
	o.state = Loading
	o.mu.Unlock()

	logger := logging.WithFields(ctx, "seq", seq, "file", file.Name())
	logger.Debug("preview started")

	start := time.Now()
	table, err := LoadTable(ctx, o.reader, o.parser, file)
	res := Result{Seq: seq, File: file.Name(), Duration: time.Since(start)}

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.seq {
		res.Superseded = true
		logger.Debug("preview superseded", "latest_seq", o.seq, "error", err)
		return res, nil
	}
	o.state = Idle

	if err != nil {
		logger.Warn("preview failed", "error", err)
		o.handles.Notifier.Notify(err)
		return res, err
	}

	o.table = table
	SyncColumns(o.handles.Columns, table.Columns)
	SyncRange(o.handles.Slider, o.handles.Start, o.handles.Stop, table.Len())
	o.handles.Notifier.Clear()

	res.Table = table
	logger.Info("preview applied",
		"columns", len(table.Columns),
		"rows", table.Len(),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// Latest returns the sequence number of the most recent call.
func (o *Orchestrator) Latest() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.seq
}

// Reject surfaces err for a selection that never reached the pipeline,
// such as one turned away before it started. seq is the value of Latest
// when the selection was made; if a call has been issued since, err is
// stale and Reject leaves the UI alone. It reports whether err was
// surfaced.
func (o *Orchestrator) Reject(seq uint64, err error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.seq {
		return false
	}
	o.handles.Notifier.Notify(err)
	return true
}

// Load is HandleChange for a single file.
func (o *Orchestrator) Load(ctx context.Context, file SelectedFile) (Result, error) {
	return o.HandleChange(ctx, []SelectedFile{file})
}

// LoadTable reads and parses a file without touching any UI.
func LoadTable(ctx context.Context, r *Reader, p TableParser, file SelectedFile) (*Table, error) {
	dataURL, err := r.ReadDataURL(ctx, file)
	if err != nil {
		return nil, err
	}
	return p.Parse(ctx, dataURL)
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Table returns the table currently shown, or nil before the first
// successful load.
func (o *Orchestrator) Table() *Table {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.table
}
