package core

import (
	"context"
	"testing"
)

func TestMemoryHistory_Recent(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(3)

	runs, err := h.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("empty history returned %d runs", len(runs))
	}

	for _, name := range []string{"a.csv", "b.csv", "c.csv", "d.csv"} {
		if err := h.Record(ctx, Run{FileName: name}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		limit int
		want  []string
	}{
		{limit: 10, want: []string{"d.csv", "c.csv", "b.csv"}},
		{limit: 2, want: []string{"d.csv", "c.csv"}},
		{limit: 0, want: []string{"d.csv", "c.csv", "b.csv"}},
	}

	for _, tt := range tests {
		runs, err := h.Recent(ctx, tt.limit)
		if err != nil {
			t.Fatalf("Recent(%d) error = %v", tt.limit, err)
		}
		if len(runs) != len(tt.want) {
			t.Fatalf("Recent(%d) returned %d runs, want %d", tt.limit, len(runs), len(tt.want))
		}
		for i, name := range tt.want {
			if runs[i].FileName != name {
				t.Errorf("Recent(%d)[%d] = %q, want %q", tt.limit, i, runs[i].FileName, name)
			}
		}
	}
}
