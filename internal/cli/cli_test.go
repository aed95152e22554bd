package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/preview"
)

const recipientsCSV = "name,email\nada,ada@example.com\nbob,bob@example.com\ncyd,cyd@example.com\n"

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHelpListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help command error = %v", err)
	}
	for _, want := range []string{"inspect", "tui"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output should contain %q, got: %s", want, out)
		}
	}
}

func TestInspect_Table(t *testing.T) {
	path := writeCSV(t, "recipients.csv", recipientsCSV)

	out, err := run(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	// go-pretty upper-cases headers and footers.
	for _, want := range []string{"recipients.csv", "name", "email", "rows", "3"} {
		if !strings.Contains(strings.ToLower(out), want) {
			t.Errorf("inspect output should contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Recipients from") {
		t.Errorf("recipients listed without --key:\n%s", out)
	}
}

func TestInspect_JSONWithRange(t *testing.T) {
	path := writeCSV(t, "recipients.csv", recipientsCSV)

	out, err := run(t, "inspect", path, "-o", "json", "--key", "email", "--start", "1", "--stop", "3")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}

	var report InspectReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if report.Rows != 3 {
		t.Errorf("Rows = %d, want 3", report.Rows)
	}
	if strings.Join(report.Columns, ",") != "name,email" {
		t.Errorf("Columns = %v, want [name email]", report.Columns)
	}
	if strings.Join(report.Recipients, ",") != "bob@example.com,cyd@example.com" {
		t.Errorf("Recipients = %v, want rows 1 and 2", report.Recipients)
	}
}

func TestInspect_RecipientRowsNumberedFromOne(t *testing.T) {
	path := writeCSV(t, "recipients.csv", recipientsCSV)

	out, err := run(t, "inspect", path, "--key", "email", "--start", "1", "--stop", "3")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}

	want := map[string]string{"bob@example.com": "2", "cyd@example.com": "3"}
	for _, line := range strings.Split(out, "\n") {
		for addr, row := range want {
			if !strings.Contains(line, addr) {
				continue
			}
			fields := strings.FieldsFunc(line, func(r rune) bool { return r == '│' || r == ' ' })
			if len(fields) != 2 || fields[0] != row {
				t.Errorf("row for %s = %q, want %s", addr, line, row)
			}
			delete(want, addr)
		}
	}
	if len(want) > 0 {
		t.Errorf("recipients missing from output: %v\n%s", want, out)
	}
	if strings.Contains(out, "ada@example.com") {
		t.Errorf("row 0 is outside [1, 3):\n%s", out)
	}
}

func TestInspect_DefaultStopIsRowCount(t *testing.T) {
	path := writeCSV(t, "recipients.csv", recipientsCSV)

	out, err := run(t, "inspect", path, "-o", "json", "--key", "email", "--limit", "2")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}

	var report InspectReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if report.Start != 0 || report.Stop != 3 {
		t.Errorf("range = [%d, %d), want [0, 3)", report.Start, report.Stop)
	}
	if len(report.Recipients) != 2 {
		t.Errorf("len(Recipients) = %d, want 2 (limit)", len(report.Recipients))
	}
}

func TestInspect_Errors(t *testing.T) {
	csvPath := writeCSV(t, "recipients.csv", recipientsCSV)
	txtPath := writeCSV(t, "notes.txt", "hello")

	tests := []struct {
		name   string
		args   []string
		target error
		check  func(error) bool
	}{
		{
			name:   "unknown column",
			args:   []string{"inspect", csvPath, "--key", "phone"},
			target: core.ErrUnknownColumn,
		},
		{
			name:   "range past the end",
			args:   []string{"inspect", csvPath, "--key", "email", "--stop", "9"},
			target: core.ErrInvalidRange,
		},
		{
			name:   "unsupported extension",
			args:   []string{"inspect", txtPath},
			target: preview.ErrUnsupportedFile,
		},
		{
			name: "missing file",
			args: []string{"inspect", filepath.Join(t.TempDir(), "gone.csv")},
			check: func(err error) bool {
				var re *preview.ReadError
				return errors.As(err, &re)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("error = %v, want %v", err, tt.target)
			}
			if tt.check != nil && !tt.check(err) {
				t.Errorf("unexpected error type: %T %v", err, err)
			}
		})
	}
}

func TestInspect_UnknownFormat(t *testing.T) {
	path := writeCSV(t, "recipients.csv", recipientsCSV)

	_, err := run(t, "inspect", path, "-o", "yaml")
	if err == nil || !strings.Contains(err.Error(), "yaml") {
		t.Errorf("error = %v, want unknown format", err)
	}
}

func TestInspect_RequiresFile(t *testing.T) {
	if _, err := run(t, "inspect"); err == nil {
		t.Error("inspect without a file should fail")
	}
}
