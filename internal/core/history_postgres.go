package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createRunsTable = `CREATE TABLE IF NOT EXISTS preview_runs (
	id          UUID PRIMARY KEY,
	workspace   TEXT NOT NULL DEFAULT '',
	file_name   TEXT NOT NULL,
	file_size   BIGINT NOT NULL,
	columns     INT NOT NULL,
	rows        INT NOT NULL,
	outcome     TEXT NOT NULL,
	error_code  TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL,
	ip_address  TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresHistory stores runs in the preview_runs table.
type PostgresHistory struct {
	pool *pgxpool.Pool
}

// NewPostgresHistory creates the table if needed.
func NewPostgresHistory(ctx context.Context, pool *pgxpool.Pool) (*PostgresHistory, error) {
	if _, err := pool.Exec(ctx, createRunsTable); err != nil {
		return nil, fmt.Errorf("create preview_runs: %w", err)
	}
	return &PostgresHistory{pool: pool}, nil
}

func (h *PostgresHistory) Record(ctx context.Context, run Run) error {
	_, err := h.pool.Exec(ctx,
		`INSERT INTO preview_runs
			(id, workspace, file_name, file_size, columns, rows, outcome, error_code, duration_ms, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.ID, run.Workspace, run.FileName, run.FileSize, run.Columns, run.Rows,
		string(run.Outcome), run.ErrorCode, run.DurationMs, run.IPAddress, run.UserAgent, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func (h *PostgresHistory) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := h.pool.Query(ctx,
		`SELECT id::text, workspace, file_name, file_size, columns, rows, outcome, error_code,
			duration_ms, ip_address, user_agent, created_at
		FROM preview_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Run, error) {
		var r Run
		var outcome string
		err := row.Scan(&r.ID, &r.Workspace, &r.FileName, &r.FileSize, &r.Columns, &r.Rows,
			&outcome, &r.ErrorCode, &r.DurationMs, &r.IPAddress, &r.UserAgent, &r.CreatedAt)
		r.Outcome = Outcome(outcome)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan runs: %w", err)
	}
	return runs, nil
}
