package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/csvpreview/internal/config"
	"github.com/JonMunkholm/csvpreview/internal/logging"
	"github.com/JonMunkholm/csvpreview/internal/preview"
	"github.com/google/uuid"
)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	MaxFileSize     int64
	MaxInflatedSize int64
	MaxConcurrent   int
	MaxWaitTime     time.Duration
	Timeout         time.Duration
	SampleSize      int
	IdleTTL         time.Duration
}

// OptionsFromConfig maps the upload, session and preview settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxFileSize:     cfg.Upload.MaxFileSize,
		MaxInflatedSize: cfg.Upload.MaxInflatedSize,
		MaxConcurrent:   cfg.Upload.MaxConcurrent,
		MaxWaitTime:     cfg.Upload.MaxWaitTime,
		Timeout:         cfg.Upload.Timeout,
		SampleSize:      cfg.Preview.SampleSize,
		IdleTTL:         cfg.Session.IdleTTL,
	}
}

const (
	DefaultTimeout    = 2 * time.Minute
	DefaultSampleSize = 10
	DefaultIdleTTL    = 30 * time.Minute
)

// Service owns the workspaces and everything they share.
type Service struct {
	opts    Options
	reader  *preview.Reader
	parser  preview.TableParser
	limiter *Limiter
	history History

	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewService creates a Service. A nil history keeps runs in memory.
func NewService(history History, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if history == nil {
		history = NewMemoryHistory(DefaultHistoryLimit)
	}

	return &Service{
		opts:       opts,
		reader:     preview.NewReader(opts.MaxFileSize),
		parser:     preview.CSVParser{MaxInflated: opts.MaxInflatedSize},
		limiter:    NewLimiter(opts.MaxConcurrent, opts.MaxWaitTime),
		history:    history,
		workspaces: make(map[string]*Workspace),
	}
}

// SampleSize is how many recipients a snapshot lists.
func (s *Service) SampleSize() int {
	return s.opts.SampleSize
}

// Limiter returns the shared pipeline limiter.
func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// OpenWorkspace returns the workspace with the given id, or a new one when
// id is empty or unknown. created reports which.
func (s *Service) OpenWorkspace(id string) (ws *Workspace, created bool, err error) {
	if id != "" {
		if ws, err := s.Workspace(id); err == nil {
			return ws, false, nil
		}
	}

	ws, err = NewWorkspace(uuid.New().String(), s.reader, s.parser)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	s.workspaces[ws.ID] = ws
	s.mu.Unlock()

	return ws, true, nil
}

// Workspace looks up an existing workspace.
func (s *Service) Workspace(id string) (*Workspace, error) {
	s.mu.RLock()
	ws, ok := s.workspaces[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	ws.touch()
	return ws, nil
}

// Preview runs a file-input change through a workspace under the limiter
// and the pipeline timeout, and records the run. An empty selection does
// nothing. A selection turned away by the limiter after a newer one has
// started is superseded like any other stale run.
func (s *Service) Preview(ctx context.Context, ws *Workspace, files []preview.SelectedFile) (preview.Result, error) {
	if len(files) == 0 || files[0] == nil {
		return ws.Load(ctx, nil)
	}

	seq := ws.orch.Latest()
	if err := s.limiter.Acquire(ctx); err != nil {
		if !ws.orch.Reject(seq, err) {
			return preview.Result{Seq: seq, File: files[0].Name(), Superseded: true}, nil
		}
		return preview.Result{}, err
	}
	defer s.limiter.Release()

	runCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	res, err := ws.Load(runCtx, files)
	s.record(ctx, ws.ID, files[0], res, err)
	return res, err
}

// Inspect reads and parses a file without any workspace.
func (s *Service) Inspect(ctx context.Context, file preview.SelectedFile) (*preview.Table, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	runCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	table, err := preview.LoadTable(runCtx, s.reader, s.parser, file)
	s.record(ctx, "", file, preview.Result{
		File:     file.Name(),
		Table:    table,
		Duration: time.Since(start),
	}, err)
	return table, err
}

// RecentRuns returns the newest recorded runs.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	return s.history.Recent(ctx, limit)
}

func (s *Service) record(ctx context.Context, workspace string, file preview.SelectedFile, res preview.Result, err error) {
	ip, ua := ClientFromContext(ctx)
	run := Run{
		ID:         uuid.New().String(),
		Workspace:  workspace,
		FileName:   file.Name(),
		FileSize:   file.Size(),
		Outcome:    OutcomeApplied,
		DurationMs: res.Duration.Milliseconds(),
		IPAddress:  ip,
		UserAgent:  ua,
		CreatedAt:  time.Now().UTC(),
	}
	switch {
	case res.Superseded:
		run.Outcome = OutcomeSuperseded
	case err != nil:
		run.Outcome = OutcomeFailed
		run.ErrorCode = MapError(err).Code
	}
	if res.Table != nil {
		run.Columns = len(res.Table.Columns)
		run.Rows = res.Table.Len()
	}

	if err := s.history.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.FromContext(ctx).Warn("record run failed", "error", err, "file", run.FileName)
	}
}

// Status is a snapshot for /healthz.
type Status struct {
	Workspaces int           `json:"workspaces"`
	Limiter    LimiterStatus `json:"limiter"`
}

func (s *Service) Status() Status {
	s.mu.RLock()
	n := len(s.workspaces)
	s.mu.RUnlock()
	return Status{Workspaces: n, Limiter: s.limiter.Status()}
}
