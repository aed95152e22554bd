package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/csvpreview/internal/preview"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "read failure",
			err:      &preview.ReadError{Name: "a.csv", Err: errors.New("permission denied")},
			wantCode: "READ001",
		},
		{
			name:     "file too large wins over read error",
			err:      &preview.ReadError{Name: "a.csv", Err: preview.ErrFileTooLarge},
			wantCode: "READ002",
		},
		{
			name:     "unsupported extension",
			err:      &preview.ReadError{Name: "a.xlsx", Err: preview.ErrUnsupportedFile},
			wantCode: "READ003",
		},
		{
			name:     "cancelled read",
			err:      &preview.ReadError{Name: "a.csv", Err: context.Canceled},
			wantCode: "UPL004",
		},
		{
			name:     "malformed csv",
			err:      &preview.ParseError{Err: fmt.Errorf("invalid csv: %w", errors.New(`extraneous or missing " in quoted-field`))},
			wantCode: "PARSE001",
		},
		{
			name:     "bad data url",
			err:      &preview.ParseError{Err: preview.ErrBadDataURL},
			wantCode: "PARSE002",
		},
		{
			name:     "damaged gzip",
			err:      &preview.ParseError{Err: errors.New("gzip: invalid header")},
			wantCode: "PARSE003",
		},
		{
			name:     "gzip over the inflate cap",
			err:      &preview.ParseError{Err: preview.ErrInflatedTooLarge},
			wantCode: "PARSE004",
		},
		{
			name:     "limiter busy",
			err:      ErrTooManyPreviews,
			wantCode: "UPL002",
		},
		{
			name:     "deadline",
			err:      context.DeadlineExceeded,
			wantCode: "UPL005",
		},
		{
			name:     "expired workspace",
			err:      ErrWorkspaceNotFound,
			wantCode: "SES001",
		},
		{
			name:     "invalid range",
			err:      fmt.Errorf("%w: start 5 > stop 2", ErrInvalidRange),
			wantCode: "SEL002",
		},
		{
			name:     "case insensitive matching",
			err:      errors.New("RATE LIMIT exceeded"),
			wantCode: "RATE001",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := &preview.ParseError{Err: errors.New("invalid csv: bare quote")}
	want := "File is not valid comma-separated data (Code: PARSE001). Check quoting, then save the file as CSV again"
	if got := FormatUserError(err); got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", preview.ErrFileTooLarge, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
