package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/csvpreview/internal/preview"
)

type memFile struct {
	name string
	data []byte
}

func (f memFile) Name() string { return f.name }
func (f memFile) Size() int64  { return int64(len(f.data)) }
func (f memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// recipientsCSV builds a name,email file with n rows.
func recipientsCSV(name string, n int) memFile {
	var b strings.Builder
	b.WriteString("name,email\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "user%d,user%d@example.com\n", i, i)
	}
	return memFile{name: name, data: []byte(b.String())}
}

func newTestService(t *testing.T) (*Service, *MemoryHistory) {
	t.Helper()
	history := NewMemoryHistory(10)
	return NewService(history, Options{MaxFileSize: 1 << 20, SampleSize: 3, IdleTTL: time.Minute}), history
}

func TestService_OpenWorkspace(t *testing.T) {
	svc, _ := newTestService(t)

	ws, created, err := svc.OpenWorkspace("")
	if err != nil {
		t.Fatalf("OpenWorkspace() error = %v", err)
	}
	if !created || ws.ID == "" {
		t.Fatalf("OpenWorkspace(\"\") created = %v, id = %q", created, ws.ID)
	}

	again, created, err := svc.OpenWorkspace(ws.ID)
	if err != nil {
		t.Fatalf("OpenWorkspace(id) error = %v", err)
	}
	if created || again != ws {
		t.Error("OpenWorkspace(id) should return the existing workspace")
	}

	other, created, _ := svc.OpenWorkspace("stale-id")
	if !created || other.ID == "stale-id" {
		t.Error("unknown id should create a fresh workspace with a new id")
	}

	if _, err := svc.Workspace("missing"); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Errorf("Workspace(missing) error = %v, want ErrWorkspaceNotFound", err)
	}
}

func TestService_PreviewRecordsRuns(t *testing.T) {
	svc, history := newTestService(t)
	ctx := ContextWithClient(context.Background(), "203.0.113.7", "test-agent")
	ws, _, _ := svc.OpenWorkspace("")

	res, err := svc.Preview(ctx, ws, []preview.SelectedFile{recipientsCSV("list.csv", 5)})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if res.Table.Len() != 5 {
		t.Errorf("rows = %d, want 5", res.Table.Len())
	}

	_, err = svc.Preview(ctx, ws, []preview.SelectedFile{memFile{name: "bad.csv", data: []byte("a,b\n\"x,y\n")}})
	if err == nil {
		t.Fatal("Preview() expected parse error")
	}

	runs, _ := history.Recent(ctx, 10)
	if len(runs) != 2 {
		t.Fatalf("recorded %d runs, want 2", len(runs))
	}
	if runs[0].Outcome != OutcomeFailed || runs[0].ErrorCode != "PARSE001" {
		t.Errorf("latest run = %+v, want failed PARSE001", runs[0])
	}
	if runs[1].Outcome != OutcomeApplied || runs[1].Rows != 5 || runs[1].Columns != 2 {
		t.Errorf("first run = %+v, want applied 5x2", runs[1])
	}
	if runs[1].IPAddress != "203.0.113.7" || runs[1].UserAgent != "test-agent" {
		t.Errorf("client not recorded: %+v", runs[1])
	}

	// The failed run left the first table on screen.
	if got := ws.Stop.Value(); got != "5" {
		t.Errorf("stop = %q, want 5", got)
	}
	if ws.Banner.Err() == nil {
		t.Error("banner should show the parse error")
	}
}

func TestService_PreviewEmptySelection(t *testing.T) {
	svc, history := newTestService(t)
	ws, _, _ := svc.OpenWorkspace("")

	res, err := svc.Preview(context.Background(), ws, nil)
	if err != nil || !res.Skipped {
		t.Fatalf("Preview(nil) = %+v, %v; want skipped", res, err)
	}
	runs, _ := history.Recent(context.Background(), 10)
	if len(runs) != 0 {
		t.Errorf("empty selection recorded %d runs", len(runs))
	}
}

func TestService_PreviewBusy(t *testing.T) {
	svc := NewService(nil, Options{MaxConcurrent: 1, MaxWaitTime: 20 * time.Millisecond})
	ws, _, _ := svc.OpenWorkspace("")

	if !svc.Limiter().TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer svc.Limiter().Release()

	_, err := svc.Preview(context.Background(), ws, []preview.SelectedFile{recipientsCSV("a.csv", 1)})
	if !errors.Is(err, ErrTooManyPreviews) {
		t.Fatalf("Preview() error = %v, want ErrTooManyPreviews", err)
	}
	if !errors.Is(ws.Banner.Err(), ErrTooManyPreviews) {
		t.Error("busy error should reach the banner")
	}
}

func TestService_PreviewBusyAfterNewerSelection(t *testing.T) {
	svc := NewService(nil, Options{MaxConcurrent: 1, MaxWaitTime: 100 * time.Millisecond, Timeout: time.Minute})
	ws, _, _ := svc.OpenWorkspace("")

	if !svc.Limiter().TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer svc.Limiter().Release()

	type outcome struct {
		res preview.Result
		err error
	}
	queued := make(chan outcome, 1)
	go func() {
		res, err := svc.Preview(context.Background(), ws, []preview.SelectedFile{recipientsCSV("old.csv", 1)})
		queued <- outcome{res, err}
	}()

	// Let the first selection start waiting, then load a newer one directly.
	time.Sleep(20 * time.Millisecond)
	if _, err := ws.Load(context.Background(), []preview.SelectedFile{recipientsCSV("new.csv", 3)}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := <-queued
	if got.err != nil {
		t.Fatalf("Preview() error = %v, want nil for a stale busy result", got.err)
	}
	if !got.res.Superseded {
		t.Error("stale busy result should be superseded")
	}
	if err := ws.Banner.Err(); err != nil {
		t.Errorf("banner = %v, want the newer preview left untouched", err)
	}
	if ws.FileName() != "new.csv" {
		t.Errorf("FileName() = %q, want %q", ws.FileName(), "new.csv")
	}
}

func TestService_Inspect(t *testing.T) {
	svc, history := newTestService(t)

	table, err := svc.Inspect(context.Background(), recipientsCSV("a.csv", 4))
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if table.Len() != 4 {
		t.Errorf("rows = %d, want 4", table.Len())
	}

	runs, _ := history.Recent(context.Background(), 1)
	if len(runs) != 1 || runs[0].Workspace != "" {
		t.Errorf("Inspect run = %+v", runs)
	}
}

func TestService_SweepIdle(t *testing.T) {
	svc, _ := newTestService(t)
	ws, _, _ := svc.OpenWorkspace("")

	if n := svc.SweepIdle(time.Now()); n != 0 {
		t.Errorf("SweepIdle(now) removed %d, want 0", n)
	}
	if n := svc.SweepIdle(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Errorf("SweepIdle(+2m) removed %d, want 1", n)
	}
	if _, err := svc.Workspace(ws.ID); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Error("swept workspace is still reachable")
	}
	if got := svc.Status().Workspaces; got != 0 {
		t.Errorf("Status().Workspaces = %d, want 0", got)
	}
}

func TestService_StartSweeperStops(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.StartSweeper(ctx, 5*time.Millisecond) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("StartSweeper() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
