package core

// scheduler.go runs background maintenance for the Service.
//
// The sweeper drops workspaces nobody has touched for IdleTTL so an abandoned
// browser tab does not keep its parsed table in memory forever. It is
// long-running and stops when its context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper removes idle workspaces every interval until ctx is done.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	slog.Info("workspace sweeper started",
		"interval", interval.String(),
		"idle_ttl", s.opts.IdleTTL.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("workspace sweeper stopped")
			return nil
		case now := <-ticker.C:
			s.runSweep(now)
		}
	}
}

func (s *Service) runSweep(now time.Time) {
	start := time.Now()
	removed := s.SweepIdle(now)
	if removed > 0 {
		slog.Info("swept idle workspaces",
			"removed", removed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// SweepIdle drops workspaces idle since before now-IdleTTL and returns how
// many were removed.
func (s *Service) SweepIdle(now time.Time) int {
	cutoff := now.Add(-s.opts.IdleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, ws := range s.workspaces {
		if ws.idleSince().Before(cutoff) {
			delete(s.workspaces, id)
			removed++
		}
	}
	return removed
}
