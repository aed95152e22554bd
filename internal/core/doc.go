// Package core provides the preview service shared by the web and terminal
// front ends.
//
// It sits on top of package preview and adds what a multi-user deployment
// needs: per-user workspaces, a process-wide concurrency limit, run history
// and user-facing error messages. It has no HTTP or terminal dependencies.
//
// # Workspaces
//
// A [Workspace] owns one set of widget models (column select, range slider,
// start and stop fields, error banner) and the [preview.Orchestrator] that
// writes to them. The web server keeps one per browser session; the terminal
// UI uses a single one.
//
//	ws, _ := svc.OpenWorkspace("")
//	res, err := svc.Preview(ctx, ws, []preview.SelectedFile{file})
//	_ = ws.SetEmailKey("email")
//	_, _, _ = ws.Slide(10, 20)
//	recipients, selected, err := ws.Recipients(10)
//
// Idle workspaces are dropped by [Service.StartSweeper].
//
// # Concurrency
//
// Every pipeline run holds a [Limiter] slot. When all slots are busy a run
// waits up to the configured time and then fails with [ErrTooManyPreviews].
//
// # History
//
// Each run that reaches the pipeline is recorded as a [Run]. [PostgresHistory]
// is used when a database is configured, [MemoryHistory] otherwise.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - READ001-READ003: File read errors (unreadable, too large, wrong type)
//   - PARSE001-PARSE004: Parse errors (invalid CSV, bad payload, bad or oversized gzip)
//   - SEL001-SEL003: Selection errors (column, range, nothing loaded)
//   - UPL002-UPL005: Request errors (busy, cancelled, timeout)
package core
