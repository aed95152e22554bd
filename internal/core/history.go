package core

import (
	"context"
	"sync"
	"time"
)

// DefaultHistoryLimit is used when Recent is called with a non-positive limit.
const DefaultHistoryLimit = 50

// Outcome is how a preview run ended.
type Outcome string

const (
	OutcomeApplied    Outcome = "applied"
	OutcomeFailed     Outcome = "failed"
	OutcomeSuperseded Outcome = "superseded"
)

// Run is one pipeline execution, recorded for /api/history.
type Run struct {
	ID         string    `json:"id"`
	Workspace  string    `json:"workspace,omitempty"`
	FileName   string    `json:"fileName"`
	FileSize   int64     `json:"fileSize"`
	Columns    int       `json:"columns"`
	Rows       int       `json:"rows"`
	Outcome    Outcome   `json:"outcome"`
	ErrorCode  string    `json:"errorCode,omitempty"`
	DurationMs int64     `json:"durationMs"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// History stores preview runs.
type History interface {
	Record(ctx context.Context, run Run) error
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)
}

// MemoryHistory keeps the last N runs in a ring buffer. It is used when no
// database is configured.
type MemoryHistory struct {
	mu   sync.Mutex
	runs []Run
	next int
	full bool
}

// NewMemoryHistory creates a ring holding up to size runs.
func NewMemoryHistory(size int) *MemoryHistory {
	if size <= 0 {
		size = DefaultHistoryLimit
	}
	return &MemoryHistory{runs: make([]Run, size)}
}

func (h *MemoryHistory) Record(_ context.Context, run Run) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs[h.next] = run
	h.next = (h.next + 1) % len(h.runs)
	if h.next == 0 {
		h.full = true
	}
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, limit int) ([]Run, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.next
	if h.full {
		n = len(h.runs)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > n {
		limit = n
	}

	out := make([]Run, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (h.next - i + len(h.runs)) % len(h.runs)
		out = append(out, h.runs[idx])
	}
	return out, nil
}
